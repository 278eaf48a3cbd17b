package messages

import "time"

// Reading is one poll of the internal environmental sensor.
// Fields whose Has* flag is false were not produced by the driver
// (a BME280 has no gas channel, for instance).
type Reading struct {
	Temperature float64   `json:"temperature"` // °C
	Humidity    float64   `json:"humidity"`    // %RH
	Pressure    float64   `json:"pressure"`    // Pa
	IAQ         float64   `json:"iaq"`
	CO2         float64   `json:"co2"` // ppm equivalent
	VOC         float64   `json:"voc"` // ppm equivalent
	GasRunIn    float64   `json:"gas_run_in"`
	HasPressure bool      `json:"has_pressure"`
	HasGas      bool      `json:"has_gas"`
	Timestamp   time.Time `json:"timestamp"`
}

// Calibration holds the offsets added to internal sensor readings.
type Calibration struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	IAQ         float64 `json:"iaq"`
}

// ExtCalibration holds the offsets added to the external sensor readings.
type ExtCalibration struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// AirQuality is a CO2/IAQ pair supplied by another node on the network.
type AirQuality struct {
	CO2 float64 `json:"co2"`
	IAQ float64 `json:"iaq"`
}
