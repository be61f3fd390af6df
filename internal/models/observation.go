package models

import "time"

// Coordinates pairs the three-word location tag with precise decimal degrees.
type Coordinates struct {
	W3W       string
	Latitude  float64 // [-90, 90]
	Longitude float64 // [-180, 180]
}

// Observation is one signal/weather measurement submitted by an observer.
// The owner reference is set at creation and never changes; observations are
// created and read, never edited or deleted.
type Observation struct {
	ID             string
	ObserverID     string
	Date           string // YYYYMMDD
	Time           string // hh:mm:ss
	TimeZoneOffset string // e.g. "UTC-05:00"
	Coordinates    Coordinates

	FreeSpacePathLoss float64 // dB
	BitErrorRate      float64
	Temperature       float64 // celsius
	Humidity          float64 // g/kg
	Snowfall          float64 // cm
	WindSpeed         float64 // km/h
	WindDirection     float64 // decimal degrees
	Precipitation     float64 // mm
	Haze              float64 // %

	Notes     string
	CreatedAt time.Time
}
