package model

import (
	"database/sql/driver"
	"encoding/json"
)

// Sort orders accepted by SearchOptions.Sort
const (
	SortNone      = ""
	SortPriceDesc = "price_desc" // price desc, then total area desc
	SortPriceAsc  = "price_asc"
	SortAreaDesc  = "area_desc"
)

// SearchRequest represents a federated search request
type SearchRequest struct {
	Filters *SearchFilters `json:"filters,omitempty"`
	Options *SearchOptions `json:"options,omitempty"`
}

// SearchFilters represents the structured listing filter form
type SearchFilters struct {
	PropertyName *string  `json:"property_name,omitempty"`
	City         *string  `json:"city,omitempty"`
	Location     *string  `json:"location,omitempty"`
	PriceMin     *float64 `json:"min_price,omitempty"`
	PriceMax     *float64 `json:"max_price,omitempty"`
	AreaMin      *float64 `json:"min_area,omitempty"`
	AreaMax      *float64 `json:"max_area,omitempty"`
	PropertyType *string  `json:"property_type,omitempty"`
	RoomsMin     *int     `json:"min_rooms,omitempty"`
	HasBalcony   bool     `json:"has_balcony,omitempty"`
}

// IsEmpty reports whether no filter is set
func (f *SearchFilters) IsEmpty() bool {
	return f == nil || *f == SearchFilters{}
}

// Value implements driver.Valuer so filters can be stored as JSONB
func (f *SearchFilters) Value() (driver.Value, error) {
	if f == nil {
		return nil, nil
	}
	return json.Marshal(f)
}

// SearchOptions represents search options
type SearchOptions struct {
	HideDuplicates bool   `json:"hide_duplicates"`
	Sort           string `json:"sort,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

// SourceError reports why a source contributed no rows to a search
type SourceError struct {
	Source       string `json:"source"`
	Kind         string `json:"kind"`
	Message      string `json:"message"`
	SelfHealed   bool   `json:"self_heal_attempted"`
	FailedColumn string `json:"failed_column,omitempty"`
}

// Source error kinds
const (
	ErrKindSchemaDrift     = "schema_drift"
	ErrKindAmbiguousColumn = "ambiguous_column"
	ErrKindConnectivity    = "connectivity"
	ErrKindQuery           = "query"
)

// SearchResponse represents a federated search result
type SearchResponse struct {
	SearchID          string        `json:"search_id"`
	Results           []Listing     `json:"results"`
	Total             int           `json:"total"`
	DuplicatesRemoved int           `json:"duplicates_removed"`
	SourceErrors      []SourceError `json:"source_errors,omitempty"`
	SourceWarnings    []string      `json:"source_warnings,omitempty"`
	Took              int64         `json:"took_ms"` // Response time in milliseconds
}

// SchemaResponse lists the tables and columns of one source
type SchemaResponse struct {
	Source string              `json:"source"`
	Tables map[string][]string `json:"tables"`
}

// MappingResponse exposes the persisted column mapping document
type MappingResponse struct {
	Mappings  map[string]map[string]string `json:"mappings"`
	Threshold float64                      `json:"match_threshold"`
}

// SourceStatus reports the reachability of one source store
type SourceStatus struct {
	Source  string `json:"source"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// FeedbackRequest records what the user did with a returned listing
type FeedbackRequest struct {
	SearchID     string `json:"search_id" binding:"required"`
	SourceID     string `json:"source_id" binding:"required"`
	PropertyName string `json:"property_name" binding:"required"`
	Action       string `json:"action" binding:"required"` // click, contact, view_details
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
