package tado

// TokenSet is the OAuth token response as returned by the tado auth server.
// It is persisted verbatim and overwritten whole on every refresh.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// DeviceAuthorization is the device flow handshake state per RFC 8628.
// Held client-side only while the user approves access in a browser.
type DeviceAuthorization struct {
	DeviceCode              string `json:"device_code"`
	UserCode                string `json:"user_code"`
	VerificationURI         string `json:"verification_uri"`
	VerificationURIComplete string `json:"verification_uri_complete,omitempty"`
	ExpiresIn               int    `json:"expires_in"`
	Interval                int    `json:"interval"`
}

// Me is the account profile returned by GET /me
type Me struct {
	Homes []Home `json:"homes"`
}

// Home identifies a home on the account
type Home struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

// Percentage wraps a percentage reading
type Percentage struct {
	Percentage float64 `json:"percentage"`
}

// Temperature wraps a temperature reading in Celsius
type Temperature struct {
	Celsius float64 `json:"celsius"`
}

// Value wraps a plain numeric reading
type Value struct {
	Value float64 `json:"value"`
}

// WeatherState is the textual weather condition code
type WeatherState struct {
	Value string `json:"value"`
}

// Weather is the home weather report. All nested blocks are optional on the
// wire, so every path is a pointer and extraction decides what to emit.
type Weather struct {
	SolarIntensity     *Percentage   `json:"solarIntensity"`
	OutsideTemperature *Temperature  `json:"outsideTemperature"`
	WeatherState       *WeatherState `json:"weatherState"`
}

// Room is a single room from the hops rooms endpoint
type Room struct {
	ID               int               `json:"id"`
	Name             string            `json:"name"`
	HeatingPower     *Percentage       `json:"heatingPower"`
	SensorDataPoints *SensorDataPoints `json:"sensorDataPoints"`
	Setting          *RoomSetting      `json:"setting"`
}

// SensorDataPoints holds the optional room sensor readings
type SensorDataPoints struct {
	Humidity          *Percentage `json:"humidity"`
	InsideTemperature *Value      `json:"insideTemperature"`
}

// RoomSetting holds the target temperature when heating is scheduled
type RoomSetting struct {
	Temperature *Value `json:"temperature"`
}

// HeatPump is the heat pump state from the hops heatPump endpoint
type HeatPump struct {
	Heating          *HeatPumpHeating  `json:"heating"`
	DomesticHotWater *DomesticHotWater `json:"domesticHotWater"`
}

// HeatPumpHeating holds the heating circuit setting
type HeatPumpHeating struct {
	Setting *RoomSetting `json:"setting"`
}

// DomesticHotWater holds hot water state. The block setpoint value arrives as
// text and has to be parsed before it can be written as a field.
type DomesticHotWater struct {
	CurrentTemperatureInCelsius *float64       `json:"currentTemperatureInCelsius"`
	CurrentBlockSetpoint        *BlockSetpoint `json:"currentBlockSetpoint"`
}

// BlockSetpoint is the nested hot water setpoint block
type BlockSetpoint struct {
	SetpointValue *SetpointValue `json:"setpointValue"`
}

// SetpointValue carries the setpoint, which the API serves as text
type SetpointValue struct {
	Value string `json:"value"`
}
