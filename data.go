package zonerender

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// LegState is the service state of a journey leg.
type LegState string

const (
	LegNormal    LegState = "normal"
	LegDelayed   LegState = "delayed"
	LegSkip      LegState = "skip"
	LegCancelled LegState = "cancelled"
)

// Leg is one step of a journey (walk, train, coffee stop...).
type Leg struct {
	Type     string   `json:"type"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Minutes  int      `json:"minutes"`
	State    LegState `json:"state"`
}

// Weather is the current weather summary.
type Weather struct {
	Temp      int    `json:"temp"`
	Condition string `json:"condition"`
	Umbrella  bool   `json:"umbrella"`
}

// Status summarizes the journey: when to leave and when it arrives.
type Status struct {
	Type           string `json:"type"`
	ArriveBy       string `json:"arriveBy"`
	TotalMinutes   int    `json:"totalMinutes"`
	LeaveInMinutes int    `json:"leaveInMinutes"`
}

// DisplayData is a snapshot of everything shown on the dashboard. It is
// produced by the data-fetch layer and is never modified by the engine.
type DisplayData struct {
	Time     string  `json:"time"`
	Date     string  `json:"date"`
	Location string  `json:"location"`
	Weather  Weather `json:"weather"`
	Status   Status  `json:"status"`
	Legs     []Leg   `json:"journeyLegs"`
}

// ReadDisplayData decodes a JSON snapshot.
func ReadDisplayData(r io.Reader) (*DisplayData, error) {
	var d DisplayData
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("zonerender: decode display data: %w", err)
	}
	for i := range d.Legs {
		if d.Legs[i].State == "" {
			d.Legs[i].State = LegNormal
		}
		d.Legs[i].State = LegState(strings.ToLower(string(d.Legs[i].State)))
	}
	return &d, nil
}

// TotalLegs returns the number of journey legs, 0 for nil data.
func (d *DisplayData) TotalLegs() int {
	if d == nil {
		return 0
	}
	return len(d.Legs)
}

// Leg returns the 1-based leg index, or false if it does not exist.
func (d *DisplayData) Leg(index int) (Leg, bool) {
	if d == nil || index < 1 || index > len(d.Legs) {
		return Leg{}, false
	}
	return d.Legs[index-1], true
}
