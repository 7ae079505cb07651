package api

// FeedResponse from GET /feed. Objects are grouped by approach date key
// (YYYY-MM-DD).
type FeedResponse struct {
	Links            map[string]string      `json:"links"`
	ElementCount     int                    `json:"element_count"`
	NearEarthObjects map[string][]NeoObject `json:"near_earth_objects"`
}

// NeoObject represents one near-earth object entry in a feed.
type NeoObject struct {
	ID                             string            `json:"id"`
	NeoReferenceID                 string            `json:"neo_reference_id"`
	Name                           string            `json:"name"`
	NasaJplURL                     string            `json:"nasa_jpl_url"`
	AbsoluteMagnitudeH             float64           `json:"absolute_magnitude_h"`
	EstimatedDiameter              EstimatedDiameter `json:"estimated_diameter"`
	IsPotentiallyHazardousAsteroid bool              `json:"is_potentially_hazardous_asteroid"`
	CloseApproachData              []CloseApproach   `json:"close_approach_data"`
	IsSentryObject                 bool              `json:"is_sentry_object"`
}

// EstimatedDiameter holds per-unit estimated diameter ranges. Only the
// kilometer range is carried into the warehouse.
type EstimatedDiameter struct {
	Kilometers DiameterRange `json:"kilometers"`
}

// DiameterRange is a min/max diameter estimate in one unit.
type DiameterRange struct {
	Min float64 `json:"estimated_diameter_min"`
	Max float64 `json:"estimated_diameter_max"`
}

// CloseApproach is one close-approach sub-record of an object.
type CloseApproach struct {
	CloseApproachDate      string           `json:"close_approach_date"`
	CloseApproachDateFull  string           `json:"close_approach_date_full"`
	EpochDateCloseApproach int64            `json:"epoch_date_close_approach"`
	RelativeVelocity       RelativeVelocity `json:"relative_velocity"`
	MissDistance           MissDistance     `json:"miss_distance"`
	OrbitingBody           string           `json:"orbiting_body"`
}

// RelativeVelocity holds approach velocities as decimal strings.
type RelativeVelocity struct {
	KilometersPerSecond string `json:"kilometers_per_second"`
	KilometersPerHour   string `json:"kilometers_per_hour"`
	MilesPerHour        string `json:"miles_per_hour"`
}

// MissDistance holds miss distances as decimal strings.
type MissDistance struct {
	Astronomical string `json:"astronomical"`
	Lunar        string `json:"lunar"`
	Kilometers   string `json:"kilometers"`
	Miles        string `json:"miles"`
}
