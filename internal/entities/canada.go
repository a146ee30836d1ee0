// Package entities contains the core domain objects for the border-wait application
package entities

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FlowValue is a wait time classification published by CBSA for one lane category
type FlowValue string

const (
	FlowNotApplicable FlowValue = "Not Applicable"
	FlowNoDelay       FlowValue = "No Delay"
)

var flowDurationRe = regexp.MustCompile(`^(\d{1,2}) (minute|hour)(s?)$`)

// FlowPattern describes the accepted shape of a flow value
const FlowPattern = `"Not Applicable" | "No Delay" | ^\d{1,2} (minute|hour)s?$`

// Validate checks the value against the flow grammar.
// "1 minute" and "1 hour" must be singular, every other count plural.
func (f FlowValue) Validate() error {
	switch f {
	case FlowNotApplicable, FlowNoDelay:
		return nil
	}

	m := flowDurationRe.FindStringSubmatch(string(f))
	if m == nil {
		return &FormatError{Value: string(f), Expected: FlowPattern}
	}
	n, _ := strconv.Atoi(m[1])
	if (n == 1) != (m[3] == "") {
		return &FormatError{Value: string(f), Expected: "singular unit for 1, plural otherwise"}
	}
	return nil
}

// ParseFlowValue trims raw cell text into a FlowValue.
// The value is returned even when it fails validation; the error is advisory.
func ParseFlowValue(raw string) (FlowValue, error) {
	f := FlowValue(strings.TrimSpace(raw))
	return f, f.Validate()
}

// TimeZone is a North American zone abbreviation such as PST or EDT
type TimeZone string

var (
	timeZoneRe      = regexp.MustCompile(`(?i)[ACEMP][DS]T`)
	exactTimeZoneRe = regexp.MustCompile(`^[ACEMP][DS]T$`)
)

// zoneOffsets holds the UTC offset in hours for each zone letter, standard time
var zoneOffsets = map[byte]int{
	'A': -4,
	'E': -5,
	'C': -6,
	'M': -7,
	'P': -8,
}

// FindTimeZone returns the first zone abbreviation in text, uppercased.
// ok is false when text carries none.
func FindTimeZone(text string) (tz TimeZone, ok bool) {
	m := timeZoneRe.FindString(text)
	if m == "" {
		return "", false
	}
	return TimeZone(strings.ToUpper(m)), true
}

// IsPacific reports whether the zone is PST or PDT
func (tz TimeZone) IsPacific() bool {
	return len(tz) > 0 && tz[0] == 'P'
}

// IsDaylight reports whether the zone is the daylight saving variant
func (tz TimeZone) IsDaylight() bool {
	return len(tz) == 3 && tz[1] == 'D'
}

// Location returns a fixed-offset location for the zone
func (tz TimeZone) Location() (*time.Location, error) {
	up := TimeZone(strings.ToUpper(string(tz)))
	if !exactTimeZoneRe.MatchString(string(up)) {
		return nil, &FormatError{Value: string(tz), Expected: "[ACEMP][DS]T"}
	}
	offset := zoneOffsets[up[0]]
	if up.IsDaylight() {
		offset++
	}
	return time.FixedZone(string(up), offset*3600), nil
}

func (tz TimeZone) String() string {
	return string(tz)
}

// CanadaBorderCrossingTimes represents one CBSA office row
type CanadaBorderCrossingTimes struct {
	CbsaOffice     string    // Office name, one line per fragment of the source cell
	CommercialFlow FlowValue // Commercial lanes
	TravellersFlow FlowValue // Travellers lanes
	Updated        time.Time // When CBSA last updated the row, in the announced zone
	TimeZone       TimeZone  // Zone announced next to the update time
}

func (c CanadaBorderCrossingTimes) String() string {
	return fmt.Sprintf("%s: commercial=%s travellers=%s updated=%s",
		strings.ReplaceAll(c.CbsaOffice, "\n", " / "), c.CommercialFlow, c.TravellersFlow,
		c.Updated.Format("2006-01-02 15:04 MST"))
}
