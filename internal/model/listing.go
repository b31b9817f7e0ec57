package model

import "strings"

// Defaults substituted for missing source values. The source templates apply
// the same values with COALESCE; Normalize applies them again on the Go side.
const (
	DefaultName         = "Unknown"
	DefaultPropertyType = "Not Specified"
	DefaultCity         = "Unknown"
	DefaultLocation     = "Unknown"
	DefaultDescription  = "No description available"
	DefaultTitle        = "No title"
)

// Listing is the unified listing record every source normalizes into
type Listing struct {
	PropertyName  string  `json:"property_name" db:"property_name"`
	PropertyTitle string  `json:"property_title,omitempty" db:"property_title"`
	PropertyType  string  `json:"property_type" db:"property_type"`
	Price         float64 `json:"price" db:"price"`           // absolute INR
	TotalArea     float64 `json:"total_area" db:"total_area"` // sqft
	City          string  `json:"city" db:"city"`
	Location      string  `json:"location" db:"location"`
	PricePerSqft  float64 `json:"price_per_sqft" db:"price_per_sqft"`
	Description   string  `json:"description,omitempty" db:"description"`
	RoomCount     int     `json:"room_count" db:"room_count"`
	HasBalcony    bool    `json:"has_balcony" db:"has_balcony"`
	SourceID      string  `json:"source_id" db:"source_id"`
}

// Normalize replaces empty and negative values with the unified defaults
func (l *Listing) Normalize() {
	if strings.TrimSpace(l.PropertyName) == "" {
		l.PropertyName = DefaultName
	}
	if strings.TrimSpace(l.PropertyType) == "" {
		l.PropertyType = DefaultPropertyType
	}
	if strings.TrimSpace(l.City) == "" {
		l.City = DefaultCity
	}
	if strings.TrimSpace(l.Location) == "" {
		l.Location = DefaultLocation
	}
	if l.Price < 0 {
		l.Price = 0
	}
	if l.TotalArea < 0 {
		l.TotalArea = 0
	}
	if l.PricePerSqft < 0 {
		l.PricePerSqft = 0
	}
	if l.RoomCount < 0 {
		l.RoomCount = 0
	}
}
