package handlers

import (
	"net/http"

	"example.com/cartonbox/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductionHandler handles production floor requests
type ProductionHandler struct {
	production *services.ProductionService
}

// NewProductionHandler creates a new ProductionHandler instance
func NewProductionHandler(production *services.ProductionService) *ProductionHandler {
	return &ProductionHandler{production: production}
}

// List handles the production items listing
func (h *ProductionHandler) List(c *gin.Context) {
	items, err := h.production.ListProductionItems(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// UpdateItem handles the produced counter update for one line item
func (h *ProductionHandler) UpdateItem(c *gin.Context) {
	poID, err := uuid.Parse(c.Param("poId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid purchase order id"})
		return
	}
	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
		return
	}

	var update services.ProductionUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	item, err := h.production.UpdateProductionItem(c.Request.Context(), poID, itemID, update)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}
