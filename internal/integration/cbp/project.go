package cbp

import (
	"time"

	"github.com/abelzeko/border-wait/internal/entities"
)

// dateOnlyLayout is used when a record carries a date without a time
const dateOnlyLayout = "1/2/2006"

func toBorderCrossing(m map[string]any) entities.BorderCrossing {
	return entities.BorderCrossing{
		PortNumber:         stringField(m, "port_number"),
		Border:             stringField(m, "border"),
		PortName:           stringField(m, "port_name"),
		CrossingName:       stringField(m, "crossing_name"),
		Hours:              stringField(m, "hours"),
		Date:               dateField(m, "date"),
		PortStatus:         stringField(m, "port_status"),
		ConstructionNotice: stringField(m, "construction_notice"),

		CommercialAutomationType: stringField(m, "commercial_automation_type"),
		PassengerAutomationType:  stringField(m, "passenger_automation_type"),
		PedestrianAutomationType: stringField(m, "pedestrian_automation_type"),
		Automation:               boolField(m, "automation"),
		AutomationEnabled:        boolField(m, "automation_enabled"),

		CommercialVehicleLanes: laneGroupField(m, "commercial_vehicle_lanes"),
		PassengerVehicleLanes:  laneGroupField(m, "passenger_vehicle_lanes"),
		PedestrianLanes:        laneGroupField(m, "pedestrian_lanes"),
	}
}

func laneGroupField(m map[string]any, key string) entities.LaneGroup {
	g, ok := m[key].(map[string]any)
	if !ok {
		return entities.LaneGroup{}
	}
	return entities.LaneGroup{
		MaximumLanes: intField(g, "maximum_lanes"),
		Standard:     lanesField(g, "standard_lanes"),
		Fast:         lanesField(g, "FAST_lanes"),
		NexusSentri:  lanesField(g, "NEXUS_SENTRI_lanes"),
		Ready:        lanesField(g, "ready_lanes"),
	}
}

func lanesField(m map[string]any, key string) *entities.Lanes {
	l, ok := m[key].(map[string]any)
	if !ok {
		return nil
	}
	return &entities.Lanes{
		DelayMinutes:      intField(l, "delay_minutes"),
		LanesOpen:         intField(l, "lanes_open"),
		OperationalStatus: stringField(l, "operational_status"),
		UpdateTime:        stringField(l, "update_time"),
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func boolField(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}

func intField(m map[string]any, key string) *int {
	switch v := m[key].(type) {
	case int:
		return &v
	case float64:
		// numeric JSON values arrive as float64
		n := int(v)
		return &n
	}
	return nil
}

func dateField(m map[string]any, key string) time.Time {
	switch v := m[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.ParseInLocation(dateOnlyLayout, v, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}
