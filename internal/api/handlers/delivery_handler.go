package handlers

import (
	"net/http"

	"example.com/cartonbox/internal/search"
	"example.com/cartonbox/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DeliveryHandler handles delivery note requests
type DeliveryHandler struct {
	fulfillment  *services.FulfillmentService
	searchClient *search.ElasticClient
}

// NewDeliveryHandler creates a new DeliveryHandler instance
func NewDeliveryHandler(fulfillment *services.FulfillmentService, searchClient *search.ElasticClient) *DeliveryHandler {
	return &DeliveryHandler{
		fulfillment:  fulfillment,
		searchClient: searchClient,
	}
}

// List handles delivery note listing
func (h *DeliveryHandler) List(c *gin.Context) {
	deliveries, err := h.fulfillment.ListDeliveries(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deliveries": deliveries})
}

// Get handles single delivery note retrieval
func (h *DeliveryHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery id"})
		return
	}

	delivery, err := h.fulfillment.GetDelivery(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, delivery)
}

// Create handles delivery note creation
func (h *DeliveryHandler) Create(c *gin.Context) {
	var draft services.DeliveryDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	delivery, err := h.fulfillment.CreateDelivery(c.Request.Context(), draft)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, delivery)
}

// Delete handles delivery note removal
func (h *DeliveryHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery id"})
		return
	}

	if err := h.fulfillment.DeleteDelivery(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// ReadyToShip handles the shippable items lookup for a customer
func (h *DeliveryHandler) ReadyToShip(c *gin.Context) {
	customerID, err := uuid.Parse(c.Query("customer_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or missing customer_id"})
		return
	}

	var poID *uuid.UUID
	if raw := c.Query("po_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid po_id"})
			return
		}
		poID = &parsed
	}

	items, err := h.fulfillment.ReadyToShipItems(c.Request.Context(), customerID, poID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Search handles the full-text delivery note search
func (h *DeliveryHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing search query"})
		return
	}
	if h.searchClient == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Search is not configured"})
		return
	}

	docs, err := h.searchClient.SearchDeliveries(c.Request.Context(), query)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": docs})
}
