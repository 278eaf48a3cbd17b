package model

import (
	"github.com/LeonardoBeccarini/wallcontroller/internal/model/entities"
	"github.com/LeonardoBeccarini/wallcontroller/internal/model/messages"
)

// Aliases exposing the common types to the services.
type (
	Gesture        = entities.Gesture
	Point          = entities.Point
	Signal         = entities.Signal
	Status         = entities.Status
	OTAPhase       = entities.OTAPhase
	Reading        = messages.Reading
	Calibration    = messages.Calibration
	ExtCalibration = messages.ExtCalibration
	AirQuality     = messages.AirQuality
)

const (
	GestureOff        = entities.GestureOff
	GestureShortPress = entities.GestureShortPress
	GestureLongPress  = entities.GestureLongPress
	GestureSwipeLeft  = entities.GestureSwipeLeft
	GestureSwipeRight = entities.GestureSwipeRight
	GestureSwipeUp    = entities.GestureSwipeUp
	GestureSwipeDown  = entities.GestureSwipeDown

	SignalTemperature    = entities.SignalTemperature
	SignalHumidity       = entities.SignalHumidity
	SignalIAQ            = entities.SignalIAQ
	SignalCO2            = entities.SignalCO2
	SignalVOC            = entities.SignalVOC
	SignalPressure       = entities.SignalPressure
	SignalExtTemperature = entities.SignalExtTemperature
	SignalExtHumidity    = entities.SignalExtHumidity

	StatusDHTOK   = entities.StatusDHTOK
	StatusDHTFail = entities.StatusDHTFail

	OTAStarted  = entities.OTAStarted
	OTADoneOK   = entities.OTADoneOK
	OTADoneFail = entities.OTADoneFail
)

// AllSignals lists every measurement signal in declaration order.
func AllSignals() []Signal { return entities.AllSignals() }
