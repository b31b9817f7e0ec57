package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anjaneya-sharma/Information-Integration-and-Applications-Project/internal/service"
)

// AdminHandler serves mapping and source administration
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Mappings handles GET /api/v1/mappings
func (h *AdminHandler) Mappings(c *gin.Context) {
	c.JSON(http.StatusOK, h.admin.Mappings())
}

// ReloadMappings handles POST /api/v1/mappings/reload
func (h *AdminHandler) ReloadMappings(c *gin.Context) {
	resp, err := h.admin.ReloadMappings(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload mappings: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Sources handles GET /api/v1/sources
func (h *AdminHandler) Sources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sources": h.admin.SourceStatus(c.Request.Context())})
}

// Schema handles GET /api/v1/sources/:id/schema
func (h *AdminHandler) Schema(c *gin.Context) {
	resp, err := h.admin.Schema(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrUnknownSource) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to inspect source: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
