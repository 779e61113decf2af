// Package sink writes measurements to InfluxDB. Metric loss is preferred
// over destabilizing the poll cycle, so write failures are logged and
// swallowed here instead of being returned to the caller.
package sink

import (
	"context"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"
)

// pointWriter is the slice of api.WriteAPIBlocking the sink uses
type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// healthChecker is the slice of influxdb2.Client the sink uses for probing
type healthChecker interface {
	Health(ctx context.Context) (*domain.HealthCheck, error)
}

// InfluxSink writes points to an InfluxDB v2 bucket. In dry-run mode it logs
// the would-be writes and never touches the transport.
type InfluxSink struct {
	writeAPI pointWriter
	health   healthChecker
	dryRun   bool
	logger   *slog.Logger
}

// Options configures the InfluxDB connection
type Options struct {
	URL    string
	Token  string
	Org    string
	Bucket string
	DryRun bool
}

// New creates an InfluxDB sink
func New(opts Options, logger *slog.Logger) *InfluxSink {
	if logger == nil {
		logger = slog.Default()
	}

	client := influxdb2.NewClient(opts.URL, opts.Token)

	return &InfluxSink{
		writeAPI: client.WriteAPIBlocking(opts.Org, opts.Bucket),
		health:   client,
		dryRun:   opts.DryRun,
		logger:   logger,
	}
}

// Write records a single measurement. Tags are identifying dimensions and
// always strings; field values keep their type (bool, number or string) so
// the client encodes them accordingly. A zero timestamp means "now". Empty
// field sets are dropped, and failures are logged, never returned.
func (s *InfluxSink) Write(ctx context.Context, measurement string, tags map[string]string, fields map[string]interface{}, ts time.Time) {
	if len(fields) == 0 {
		return
	}
	if ts.IsZero() {
		ts = time.Now()
	}

	if s.dryRun {
		s.logger.Info("[DRY RUN] Would write measurement",
			"measurement", measurement,
			"tags", tags,
			"fields", fields,
		)
		return
	}

	point := influxdb2.NewPoint(measurement, tags, fields, ts)
	if err := s.writeAPI.WritePoint(ctx, point); err != nil {
		s.logger.Error("Failed to write measurement",
			"measurement", measurement,
			"error", err,
		)
	}
}

// CheckHealth reports whether InfluxDB is reachable. Under dry-run there is
// nothing to reach, so it always reports healthy.
func (s *InfluxSink) CheckHealth(ctx context.Context) bool {
	if s.dryRun {
		return true
	}

	health, err := s.health.Health(ctx)
	if err != nil {
		s.logger.Warn("InfluxDB health check failed", "error", err)
		return false
	}

	return health.Status == domain.HealthCheckStatusPass
}
