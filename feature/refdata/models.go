package refdata

import "time"

// PlayableClass is a playable class definition from the static data API.
type PlayableClass struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlayableRace is a playable race definition from the static data API.
type PlayableRace struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:64" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Realm is a realm definition, unique per (slug, region).
type Realm struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Slug      string    `gorm:"size:64;uniqueIndex:idx_realm_identity,priority:1" json:"slug"`
	Region    string    `gorm:"size:8;uniqueIndex:idx_realm_identity,priority:2" json:"region"`
	Name      string    `gorm:"size:64" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Report summarizes one reference data import.
type Report struct {
	Classes int `json:"classes"`
	Races   int `json:"races"`
	Realms  int `json:"realms"`
}
