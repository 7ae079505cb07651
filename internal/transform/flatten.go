package transform

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"neows-pipeline/internal/api"
	"neows-pipeline/internal/model"
)

// DefaultOrbitingBody is assumed when a sub-record does not name the body it
// approaches.
const DefaultOrbitingBody = "Earth"

// TransformError indicates the top-level feed structure is unusable.
// Per-record problems never produce one; they become Result warnings.
type TransformError struct {
	Reason string
}

func (e *TransformError) Error() string {
	return "transform feed: " + e.Reason
}

// Warning records one skipped record and why it was dropped.
type Warning struct {
	DateKey  string // envelope date key the record was grouped under
	ObjectID string // object id if known, "" when the id itself was missing
	Reason   string
}

// Result carries the flattened events plus per-record skip diagnostics.
type Result struct {
	Events   []model.CloseApproachEvent
	Warnings []Warning
	Dates    int // number of date keys seen in the envelope
}

// Flatten converts a feed payload into one CloseApproachEvent per close
// approach. Date keys are visited in sorted order so output is deterministic;
// within a date, objects and their approaches keep feed order.
func Flatten(feed *api.FeedResponse) (*Result, error) {
	if feed == nil {
		return nil, &TransformError{Reason: "nil feed"}
	}
	if feed.NearEarthObjects == nil {
		return nil, &TransformError{Reason: "missing near_earth_objects"}
	}

	dates := make([]string, 0, len(feed.NearEarthObjects))
	for k := range feed.NearEarthObjects {
		dates = append(dates, k)
	}
	sort.Strings(dates)

	res := &Result{Dates: len(dates)}
	for _, dateKey := range dates {
		for _, obj := range feed.NearEarthObjects[dateKey] {
			id := obj.ID
			if id == "" {
				id = obj.NeoReferenceID
			}
			if id == "" {
				res.Warnings = append(res.Warnings, Warning{
					DateKey: dateKey,
					Reason:  "missing object id",
				})
				continue
			}

			for _, ca := range obj.CloseApproachData {
				date, ok := approachDate(ca.CloseApproachDate, dateKey)
				if !ok {
					res.Warnings = append(res.Warnings, Warning{
						DateKey:  dateKey,
						ObjectID: id,
						Reason:   "unparseable approach date",
					})
					continue
				}

				body := ca.OrbitingBody
				if body == "" {
					body = DefaultOrbitingBody
				}

				res.Events = append(res.Events, model.CloseApproachEvent{
					ObjectID:               id,
					Name:                   obj.Name,
					CloseApproachDate:      date,
					AbsoluteMagnitudeH:     obj.AbsoluteMagnitudeH,
					DiameterMinKM:          obj.EstimatedDiameter.Kilometers.Min,
					DiameterMaxKM:          obj.EstimatedDiameter.Kilometers.Max,
					IsPotentiallyHazardous: obj.IsPotentiallyHazardousAsteroid,
					RelativeVelocityKPS:    floatValue(ca.RelativeVelocity.KilometersPerSecond),
					MissDistanceKM:         floatValue(ca.MissDistance.Kilometers),
					OrbitingBody:           body,
				})
			}
		}
	}

	return res, nil
}

// approachDate resolves the event date: the sub-record's own date when it
// parses, else the envelope date key the object was grouped under.
func approachDate(recordDate, dateKey string) (time.Time, bool) {
	if recordDate != "" {
		if t, err := model.ParseDate(recordDate); err == nil {
			return t, true
		}
	}
	if t, err := model.ParseDate(dateKey); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// floatValue parses a decimal string measurement. NeoWs serializes velocities
// and distances as strings ("18.0862"). Returns 0 for empty or invalid input.
func floatValue(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
