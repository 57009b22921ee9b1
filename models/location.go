package models

import (
	"time"
)

const (
	LocationTypeCity      = "city"
	LocationTypeCountry   = "country"
	LocationTypeContinent = "continent"
)

// ValidLocationType reports whether t is one of the known location
// hierarchy levels.
func ValidLocationType(t string) bool {
	switch t {
	case LocationTypeCity, LocationTypeCountry, LocationTypeContinent:
		return true
	}
	return false
}

// Continent → Country → City form the location hierarchy. Attractions
// hang off cities; country and continent totals are subtree sums.

type Continent struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Countries []Country `json:"countries,omitempty" gorm:"foreignKey:ContinentID"`
}

type Country struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	ContinentID string    `json:"continent_id" gorm:"index;not null"`
	Name        string    `json:"name" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"`
	ISOCode     string    `json:"iso_code" gorm:"type:varchar(2)"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`

	Continent *Continent `json:"continent,omitempty" gorm:"foreignKey:ContinentID"`
	Cities    []City     `json:"cities,omitempty" gorm:"foreignKey:CountryID"`
}

type City struct {
	ID        string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	CountryID string    `json:"country_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;not null"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Country     *Country     `json:"country,omitempty" gorm:"foreignKey:CountryID"`
	Attractions []Attraction `json:"attractions,omitempty" gorm:"foreignKey:CityID"`
}
