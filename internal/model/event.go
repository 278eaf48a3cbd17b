package model

import "fmt"

// Kind is the discriminant of an Event.
type Kind int

const (
	KindStatusUpdate Kind = iota
	KindHeartbeat
	KindTemperature
	KindHumidity
	KindTouched
	KindGasStatus
	KindIAQ
	KindCO2
	KindVOC
	KindPressure
	KindExtTemperature
	KindExtHumidity
	KindOTAStarted
	KindOTADoneOK
	KindOTADoneFail
)

var kindNames = [...]string{
	KindStatusUpdate:   "status_update",
	KindHeartbeat:      "heartbeat",
	KindTemperature:    "temperature",
	KindHumidity:       "humidity",
	KindTouched:        "touched",
	KindGasStatus:      "gas_status",
	KindIAQ:            "iaq",
	KindCO2:            "co2",
	KindVOC:            "voc",
	KindPressure:       "pressure",
	KindExtTemperature: "ext_temperature",
	KindExtHumidity:    "ext_humidity",
	KindOTAStarted:     "ota_started",
	KindOTADoneOK:      "ota_done_ok",
	KindOTADoneFail:    "ota_done_fail",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Event is a discrete occurrence flowing from a producer to every observer.
//
// The set of variants is closed: only the types in this file implement it.
// Consumers switch on the concrete type and treat anything else as a
// programming error.
type Event interface {
	Kind() Kind
	isEvent()
}

// Heartbeat is the periodic liveness signal.
type Heartbeat struct{}

// Measurement carries one float reading of a Signal.
type Measurement struct {
	Signal Signal
	Value  float64
}

// GasStatus reports whether the gas sensor finished its run-in.
type GasStatus struct {
	Ready bool
}

// Touched is a classified touch gesture and the point where it started.
type Touched struct {
	Gesture Gesture
	Point   Point
}

// OTA reports a step of the firmware update lifecycle.
type OTA struct {
	Phase OTAPhase
}

// StatusUpdate reports a device health transition.
type StatusUpdate struct {
	Status Status
}

func (Heartbeat) Kind() Kind    { return KindHeartbeat }
func (GasStatus) Kind() Kind    { return KindGasStatus }
func (Touched) Kind() Kind      { return KindTouched }
func (StatusUpdate) Kind() Kind { return KindStatusUpdate }

func (m Measurement) Kind() Kind {
	switch m.Signal {
	case SignalTemperature:
		return KindTemperature
	case SignalHumidity:
		return KindHumidity
	case SignalIAQ:
		return KindIAQ
	case SignalCO2:
		return KindCO2
	case SignalVOC:
		return KindVOC
	case SignalPressure:
		return KindPressure
	case SignalExtTemperature:
		return KindExtTemperature
	case SignalExtHumidity:
		return KindExtHumidity
	}
	return Kind(-1)
}

func (o OTA) Kind() Kind {
	switch o.Phase {
	case OTAStarted:
		return KindOTAStarted
	case OTADoneOK:
		return KindOTADoneOK
	case OTADoneFail:
		return KindOTADoneFail
	}
	return Kind(-1)
}

func (Heartbeat) isEvent()    {}
func (Measurement) isEvent()  {}
func (GasStatus) isEvent()    {}
func (Touched) isEvent()      {}
func (OTA) isEvent()          {}
func (StatusUpdate) isEvent() {}
