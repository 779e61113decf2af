package poller

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ejci/tado-data-capture/internal/tado"
)

const (
	defaultTickInterval = time.Minute
	defaultInitialDelay = 5 * time.Second

	// The tado API is rate limited, so the call counter tracks a rolling day
	counterResetInterval = 24 * time.Hour
)

// TadoClient is the vendor API surface the poller consumes
type TadoClient interface {
	IsAuthenticated() bool
	GetMe(ctx context.Context) (*tado.Me, error)
	GetWeather(ctx context.Context, homeID int) (*tado.Weather, error)
	GetRooms(ctx context.Context, homeID int) ([]tado.Room, error)
	GetHeatPump(ctx context.Context, homeID int) (*tado.HeatPump, error)
}

// Sink receives extracted measurements. Writes never fail from the poller's
// point of view; the sink logs and swallows its own errors.
type Sink interface {
	Write(ctx context.Context, measurement string, tags map[string]string, fields map[string]interface{}, ts time.Time)
	CheckHealth(ctx context.Context) bool
}

// State is a read-only snapshot of the poller for the health endpoint
type State struct {
	LastUpdate *time.Time
	APICalls   int
	Intervals  map[Category]int64
	LastRun    map[Category]int64
}

// Poller drives the periodic collection cycles: one ticker invokes a cycle
// every minute, the schedule decides which categories actually fetch.
type Poller struct {
	client       TadoClient
	sink         Sink
	schedule     *Schedule
	logger       *slog.Logger
	tickInterval time.Duration
	initialDelay time.Duration
	stopChan     chan struct{}
	cycleActive  atomic.Bool

	stateMutex sync.RWMutex
	lastUpdate *time.Time
	apiCalls   int
}

// New creates a poller with the default one-minute tick
func New(client TadoClient, sink Sink, schedule *Schedule, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		client:       client,
		sink:         sink,
		schedule:     schedule,
		logger:       logger,
		tickInterval: defaultTickInterval,
		initialDelay: defaultInitialDelay,
		stopChan:     make(chan struct{}),
	}
}

// Start begins the poll loop. An initial cycle runs shortly after startup so
// a freshly authenticated instance does not idle for a full tick.
func (p *Poller) Start() {
	p.logger.Info("Poller started",
		"tick", p.tickInterval.String(),
		"initial_delay", p.initialDelay.String(),
	)

	initial := time.NewTimer(p.initialDelay)
	defer initial.Stop()
	ticker := time.NewTicker(p.tickInterval)
	defer ticker.Stop()
	counterReset := time.NewTicker(counterResetInterval)
	defer counterReset.Stop()

	for {
		select {
		case <-initial.C:
			p.tick()
		case <-ticker.C:
			p.tick()
		case <-counterReset.C:
			p.resetCallCounter()
		case <-p.stopChan:
			p.logger.Info("Poller stopped")
			return
		}
	}
}

// Stop stops the poll loop
func (p *Poller) Stop() {
	close(p.stopChan)
}

// State returns a snapshot of the poller state for the health endpoint
func (p *Poller) State() State {
	p.stateMutex.RLock()
	defer p.stateMutex.RUnlock()

	var lastUpdate *time.Time
	if p.lastUpdate != nil {
		t := *p.lastUpdate
		lastUpdate = &t
	}

	return State{
		LastUpdate: lastUpdate,
		APICalls:   p.apiCalls,
		Intervals:  p.schedule.Intervals(),
		LastRun:    p.schedule.LastRun(),
	}
}

// tick runs one cycle unless the previous one is still in flight. Cycles
// normally finish well inside the tick period; if one ever does not, the
// tick is skipped rather than racing the run state.
func (p *Poller) tick() {
	if !p.cycleActive.CompareAndSwap(false, true) {
		p.logger.Debug("Previous poll cycle still running, skipping tick")
		return
	}
	defer p.cycleActive.Store(false)

	p.runCycle(context.Background())
}

// runCycle performs one polling cycle across all homes and due categories.
// Category failures are isolated: a failing fetch or malformed payload is
// logged and the rest of the cycle proceeds. Only a failing profile fetch
// aborts the cycle, and that is recorded as an "errors" measurement.
func (p *Poller) runCycle(ctx context.Context) {
	if !p.client.IsAuthenticated() {
		p.logger.Info("Not authenticated, waiting for login")
		return
	}

	p.trackCall()
	me, err := p.client.GetMe(ctx)
	if err != nil {
		p.logger.Error("Failed to fetch profile, aborting cycle", "error", err)
		p.sink.Write(ctx, "errors",
			map[string]string{"type": "polling"},
			map[string]interface{}{"message": err.Error()},
			time.Time{},
		)
		return
	}

	if len(me.Homes) == 0 {
		p.logger.Info("Account has no homes, nothing to poll")
		return
	}

	// Dueness is decided once per cycle so every home sees the same set.
	now := time.Now()
	due := make(map[Category]bool, len(Categories))
	for _, category := range Categories {
		due[category] = p.schedule.IsDue(category, now)
	}

	for _, home := range me.Homes {
		p.logger.Debug("Polling home", "home_id", home.ID)

		if due[CategoryWeather] {
			if err := p.collectWeather(ctx, home); err != nil {
				p.logger.Error("Error polling weather", "home_id", home.ID, "error", err)
			}
		}
		if due[CategoryRooms] {
			if err := p.collectRooms(ctx, home); err != nil {
				p.logger.Error("Error polling rooms", "home_id", home.ID, "error", err)
			}
		}
		if due[CategoryHeatPump] {
			if err := p.collectHeatPump(ctx, home); err != nil {
				p.logger.Error("Error polling heat pump", "home_id", home.ID, "error", err)
			}
		}
	}

	completed := time.Now()
	p.stateMutex.Lock()
	p.lastUpdate = &completed
	p.stateMutex.Unlock()

	p.logger.Info("Poll cycle completed", "last_update", completed.Format(time.RFC3339))
}

func (p *Poller) collectWeather(ctx context.Context, home tado.Home) error {
	p.trackCall()
	weather, err := p.client.GetWeather(ctx, home.ID)
	if err != nil {
		return err
	}

	fields, err := weatherFields(weather)
	if err != nil {
		return err
	}

	p.sink.Write(ctx, "weather", homeTags(home), fields, time.Time{})
	return nil
}

func (p *Poller) collectRooms(ctx context.Context, home tado.Home) error {
	p.trackCall()
	rooms, err := p.client.GetRooms(ctx, home.ID)
	if err != nil {
		return err
	}

	for _, room := range rooms {
		fields := roomFields(room)
		if len(fields) == 0 {
			continue
		}

		tags := homeTags(home)
		tags["roomId"] = strconv.Itoa(room.ID)
		tags["roomName"] = room.Name
		p.sink.Write(ctx, "rooms", tags, fields, time.Time{})
	}

	return nil
}

func (p *Poller) collectHeatPump(ctx context.Context, home tado.Home) error {
	p.trackCall()
	heatPump, err := p.client.GetHeatPump(ctx, home.ID)
	if err != nil {
		return err
	}

	fields := heatPumpFields(heatPump)
	if len(fields) == 0 {
		return nil
	}

	p.sink.Write(ctx, "heat_pump", homeTags(home), fields, time.Time{})
	return nil
}

func homeTags(home tado.Home) map[string]string {
	return map[string]string{"homeId": strconv.Itoa(home.ID)}
}

func (p *Poller) trackCall() {
	p.stateMutex.Lock()
	p.apiCalls++
	p.stateMutex.Unlock()
}

func (p *Poller) resetCallCounter() {
	p.stateMutex.Lock()
	p.apiCalls = 0
	p.stateMutex.Unlock()

	p.logger.Info("Daily API call counter reset")
}
