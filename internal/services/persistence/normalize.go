package persistence

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/LeonardoBeccarini/wallcontroller/internal/model"
)

const measurementName = "wall_controller"

// EventToPoint maps the events worth storing to a point; other kinds
// return nil.
func EventToPoint(host string, ev model.Event, ts time.Time) (string, *write.Point) {
	var signal string
	var value float64
	switch e := ev.(type) {
	case model.Measurement:
		if !e.Signal.Valid() {
			return "", nil
		}
		signal, value = e.Signal.String(), e.Value
	case model.GasStatus:
		signal = "gas_status"
		if e.Ready {
			value = 1
		}
	default:
		return "", nil
	}
	tags := map[string]string{"host": host, "signal": signal}
	fields := map[string]interface{}{"value": value}
	return signal, influxdb2.NewPoint(measurementName, tags, fields, ts)
}
