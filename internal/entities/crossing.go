package entities

import (
	"time"
)

// Lanes is the state of one lane type inside a lane group
type Lanes struct {
	DelayMinutes      *int   // nil when CBP did not report a delay
	LanesOpen         *int   // nil when CBP did not report open lanes
	OperationalStatus string // e.g. "no delay", "delay", "N/A", "Lanes Closed"
	UpdateTime        string // free text such as "At 2:00 pm PDT"
}

// LaneGroup is a category of crossing lane with its lane-type sub-records
type LaneGroup struct {
	MaximumLanes *int
	Standard     *Lanes
	Fast         *Lanes
	NexusSentri  *Lanes
	Ready        *Lanes
}

// BorderCrossing represents one CBP port record after normalization
type BorderCrossing struct {
	PortNumber         string
	Border             string
	PortName           string
	CrossingName       string
	Hours              string
	Date               time.Time // UTC
	PortStatus         string
	ConstructionNotice string

	CommercialAutomationType string
	PassengerAutomationType  string
	PedestrianAutomationType string
	Automation               bool
	AutomationEnabled        bool

	CommercialVehicleLanes LaneGroup
	PassengerVehicleLanes  LaneGroup
	PedestrianLanes        LaneGroup
}

// DisplayName joins port and crossing names the way CBP lists them
func (b BorderCrossing) DisplayName() string {
	if b.CrossingName == "" {
		return b.PortName
	}
	return b.PortName + " - " + b.CrossingName
}
