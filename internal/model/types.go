package model

import "time"

// CloseApproachEvent is one flattened close approach: one near-earth object
// passing on one date. It is the unit stored in the neows table and written
// to export files.
type CloseApproachEvent struct {
	ObjectID          string    // NeoWs object id (SPK-ID), part of the composite key
	Name              string    // Display name (e.g., "(2019 UO)")
	CloseApproachDate time.Time // Approach date (UTC midnight), part of the composite key

	// Object properties
	AbsoluteMagnitudeH     float64 // Absolute magnitude H
	DiameterMinKM          float64 // Estimated diameter lower bound (km)
	DiameterMaxKM          float64 // Estimated diameter upper bound (km)
	IsPotentiallyHazardous bool    // NASA "potentially hazardous asteroid" flag

	// Approach properties
	RelativeVelocityKPS float64 // Relative velocity (km/s), 0 when absent
	MissDistanceKM      float64 // Miss distance (km), 0 when absent
	OrbitingBody        string  // Body being approached, "Earth" when absent
}
