package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/model"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/service"
	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/utils"
)

// SearchHandler handles search-related HTTP requests
type SearchHandler struct {
	searchService *service.SearchService
	maxLimit      int
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *service.SearchService, maxLimit int) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		maxLimit:      maxLimit,
	}
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	h.run(c, &req)
}

// SearchForm handles GET /api/v1/search with the filter form as query
// parameters. Prices accept listing notation such as "50 L" or "1.2 Cr" and
// areas accept "110 sqmt".
func (h *SearchHandler) SearchForm(c *gin.Context) {
	req, err := parseSearchForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	h.run(c, req)
}

func (h *SearchHandler) run(c *gin.Context, req *model.SearchRequest) {
	if req.Options == nil {
		req.Options = &model.SearchOptions{}
	}
	if !service.ValidSort(req.Options.Sort) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid sort %q. Must be one of: price_desc, price_asc, area_desc", req.Options.Sort)})
		return
	}
	// Validate and cap limits
	if req.Options.Limit < 0 {
		req.Options.Limit = 0
	}
	if h.maxLimit > 0 && req.Options.Limit > h.maxLimit {
		req.Options.Limit = h.maxLimit
	}

	response, err := h.searchService.Search(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

// parseSearchForm reads the filter form from query parameters
func parseSearchForm(c *gin.Context) (*model.SearchRequest, error) {
	filters := &model.SearchFilters{}

	text := func(key string) *string {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			return &v
		}
		return nil
	}
	filters.PropertyName = text("property_name")
	filters.City = text("city")
	filters.Location = text("location")
	filters.PropertyType = text("property_type")

	price := func(key string) (*float64, error) {
		v := strings.TrimSpace(c.Query(key))
		if v == "" {
			return nil, nil
		}
		parsed, err := utils.ParseINRPrice(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return &parsed, nil
	}
	area := func(key string) (*float64, error) {
		v := strings.TrimSpace(c.Query(key))
		if v == "" {
			return nil, nil
		}
		parsed, err := utils.ParseAreaSqft(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return &parsed, nil
	}

	var err error
	if filters.PriceMin, err = price("min_price"); err != nil {
		return nil, err
	}
	if filters.PriceMax, err = price("max_price"); err != nil {
		return nil, err
	}
	if filters.AreaMin, err = area("min_area"); err != nil {
		return nil, err
	}
	if filters.AreaMax, err = area("max_area"); err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(c.Query("min_rooms")); v != "" {
		rooms, err := strconv.Atoi(v)
		if err != nil || rooms < 0 {
			return nil, fmt.Errorf("min_rooms: invalid value %q", v)
		}
		filters.RoomsMin = &rooms
	}
	if filters.HasBalcony, err = formBool(c, "has_balcony"); err != nil {
		return nil, err
	}

	options := &model.SearchOptions{Sort: strings.TrimSpace(c.Query("sort"))}
	if options.HideDuplicates, err = formBool(c, "hide_duplicates"); err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("limit: invalid value %q", v)
		}
		options.Limit = limit
	}

	return &model.SearchRequest{Filters: filters, Options: options}, nil
}

// formBool accepts checkbox values ("on") as well as strconv booleans
func formBool(c *gin.Context, key string) (bool, error) {
	v := strings.TrimSpace(c.Query(key))
	switch strings.ToLower(v) {
	case "":
		return false, nil
	case "on", "yes":
		return true, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid value %q", key, v)
	}
	return b, nil
}
