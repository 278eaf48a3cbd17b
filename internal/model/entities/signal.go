package entities

// Signal identifies one continuously sampled sensor quantity.
type Signal int

const (
	SignalTemperature Signal = iota
	SignalHumidity
	SignalIAQ
	SignalCO2
	SignalVOC
	SignalPressure // hPa
	SignalExtTemperature
	SignalExtHumidity
)

var signalNames = [...]string{
	SignalTemperature:    "temperature",
	SignalHumidity:       "humidity",
	SignalIAQ:            "iaq",
	SignalCO2:            "co2",
	SignalVOC:            "voc",
	SignalPressure:       "pressure",
	SignalExtTemperature: "ext_temperature",
	SignalExtHumidity:    "ext_humidity",
}

func (s Signal) String() string {
	if s < 0 || int(s) >= len(signalNames) {
		return "unknown"
	}
	return signalNames[s]
}

// Valid reports whether s is a known signal.
func (s Signal) Valid() bool {
	return s >= 0 && int(s) < len(signalNames)
}

// AllSignals lists every signal in declaration order.
func AllSignals() []Signal {
	out := make([]Signal, len(signalNames))
	for i := range signalNames {
		out[i] = Signal(i)
	}
	return out
}

// Status is the payload of a status update.
type Status int

const (
	StatusDHTOK Status = iota
	StatusDHTFail
)

func (s Status) String() string {
	switch s {
	case StatusDHTOK:
		return "dht_ok"
	case StatusDHTFail:
		return "dht_fail"
	default:
		return "unknown"
	}
}

// OTAPhase is the lifecycle step reported by an OTA event.
type OTAPhase int

const (
	OTAStarted OTAPhase = iota
	OTADoneOK
	OTADoneFail
)

func (p OTAPhase) String() string {
	switch p {
	case OTAStarted:
		return "started"
	case OTADoneOK:
		return "done_ok"
	case OTADoneFail:
		return "done_fail"
	default:
		return "unknown"
	}
}
