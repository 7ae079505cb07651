// Package model defines shared data types used across the NeoWs pipeline.
//
// All types mirror the warehouse schema: one row per close approach of one
// near-earth object on one date, keyed by (close_approach_date, object_id).
//
// Conventions:
//   - Dates: time.Time at UTC midnight, wire format YYYY-MM-DD
//   - Distances: kilometers, velocities: kilometers per second
//   - IDs: NeoWs object id strings (SPK-IDs)
package model
