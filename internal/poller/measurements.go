package poller

import (
	"errors"
	"strconv"

	"github.com/ejci/tado-data-capture/internal/tado"
)

// Field extraction from vendor payloads. The shapes encode real API quirks:
// solar intensity may be missing entirely (reported as 0), rooms report only
// the sensors they have, and the hot water setpoint is served as text inside
// a nested block.

// weatherFields maps a weather report to fields. Temperature and state are
// expected; a payload without them is malformed and soft-fails the category.
func weatherFields(weather *tado.Weather) (map[string]interface{}, error) {
	if weather.OutsideTemperature == nil || weather.WeatherState == nil {
		return nil, errors.New("weather payload missing outsideTemperature or weatherState")
	}

	solarIntensity := 0.0
	if weather.SolarIntensity != nil {
		solarIntensity = weather.SolarIntensity.Percentage
	}

	return map[string]interface{}{
		"solarIntensityPercentage": solarIntensity,
		"outsideTemperature":       weather.OutsideTemperature.Celsius,
		"weatherState":             weather.WeatherState.Value,
	}, nil
}

// roomFields maps a room to fields, including only what the payload carries.
// A room with no readings yields an empty map and no measurement.
func roomFields(room tado.Room) map[string]interface{} {
	fields := make(map[string]interface{})

	if room.HeatingPower != nil {
		fields["heatingPowerPercentage"] = room.HeatingPower.Percentage
	}
	if room.SensorDataPoints != nil {
		if room.SensorDataPoints.Humidity != nil {
			fields["humidity"] = room.SensorDataPoints.Humidity.Percentage
		}
		if room.SensorDataPoints.InsideTemperature != nil {
			fields["temperature"] = room.SensorDataPoints.InsideTemperature.Value
		}
	}
	if room.Setting != nil && room.Setting.Temperature != nil {
		fields["setTemperature"] = room.Setting.Temperature.Value
	}

	return fields
}

// heatPumpFields maps heat pump state to fields, each independently optional
func heatPumpFields(heatPump *tado.HeatPump) map[string]interface{} {
	fields := make(map[string]interface{})

	if heatPump.Heating != nil && heatPump.Heating.Setting != nil && heatPump.Heating.Setting.Temperature != nil {
		fields["heatPumpSetTemperature"] = heatPump.Heating.Setting.Temperature.Value
	}

	if dhw := heatPump.DomesticHotWater; dhw != nil {
		if dhw.CurrentTemperatureInCelsius != nil {
			fields["hotWaterCurrentTemperatureInCelsius"] = *dhw.CurrentTemperatureInCelsius
		}
		if dhw.CurrentBlockSetpoint != nil && dhw.CurrentBlockSetpoint.SetpointValue != nil {
			if value, err := strconv.ParseFloat(dhw.CurrentBlockSetpoint.SetpointValue.Value, 64); err == nil {
				fields["hotWaterSetTemperatureInCelsius"] = value
			}
		}
	}

	return fields
}
