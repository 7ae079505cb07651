package export

import (
	"encoding/json"
	"os"

	"neows-pipeline/internal/model"
)

// jsonEvent mirrors the warehouse column names. The model type stays
// tag-free; the export wire shape lives here.
type jsonEvent struct {
	ObjectID               string  `json:"object_id"`
	Name                   string  `json:"name"`
	CloseApproachDate      string  `json:"close_approach_date"`
	AbsoluteMagnitudeH     float64 `json:"absolute_magnitude_h"`
	DiameterMinKM          float64 `json:"diameter_min_km"`
	DiameterMaxKM          float64 `json:"diameter_max_km"`
	IsPotentiallyHazardous bool    `json:"is_potentially_hazardous"`
	RelativeVelocityKPS    float64 `json:"relative_velocity_kps"`
	MissDistanceKM         float64 `json:"miss_distance_km"`
	OrbitingBody           string  `json:"orbiting_body"`
}

func writeJSON(path string, events []model.CloseApproachEvent) error {
	// Non-nil so an empty export encodes as [] rather than null.
	rows := make([]jsonEvent, 0, len(events))
	for _, ev := range events {
		rows = append(rows, jsonEvent{
			ObjectID:               ev.ObjectID,
			Name:                   ev.Name,
			CloseApproachDate:      ev.CloseApproachDate.Format(model.DateLayout),
			AbsoluteMagnitudeH:     ev.AbsoluteMagnitudeH,
			DiameterMinKM:          ev.DiameterMinKM,
			DiameterMaxKM:          ev.DiameterMaxKM,
			IsPotentiallyHazardous: ev.IsPotentiallyHazardous,
			RelativeVelocityKPS:    ev.RelativeVelocityKPS,
			MissDistanceKM:         ev.MissDistanceKM,
			OrbitingBody:           ev.OrbitingBody,
		})
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}
