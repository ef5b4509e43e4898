package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"immoapp/internal/service"
)

// ListingHandler expone los anuncios inmobiliarios.
type ListingHandler struct {
	logger      *zap.Logger
	listingServ *service.ListingService
}

func NewListingHandler(logger *zap.Logger, listingServ *service.ListingService) *ListingHandler {
	return &ListingHandler{
		logger:      logger,
		listingServ: listingServ,
	}
}

// CreateListing maneja POST /listings.
func (h *ListingHandler) CreateListing(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Price       int64    `json:"price"`
		Address     string   `json:"address"`
		City        string   `json:"city"`
		ZipCode     string   `json:"zip_code"`
		Surface     float64  `json:"surface"`
		Rooms       int      `json:"rooms"`
		Bedrooms    int      `json:"bedrooms"`
		Bathrooms   int      `json:"bathrooms"`
		Type        string   `json:"type"`
		Status      string   `json:"status"`
		Images      []string `json:"images"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create listing request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	listing, err := h.listingServ.Create(c.Request.Context(), claims.AccountID, service.CreateListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Address:     req.Address,
		City:        req.City,
		ZipCode:     req.ZipCode,
		Surface:     req.Surface,
		Rooms:       req.Rooms,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Type:        req.Type,
		Status:      req.Status,
		Images:      req.Images,
	})
	if err != nil {
		respondError(c, h.logger, "create listing", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"listing": listing})
}

// ListListings maneja GET /listings.
func (h *ListingHandler) ListListings(c *gin.Context) {
	listings, err := h.listingServ.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "list listings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings})
}

// GetListing maneja GET /listings/:id.
func (h *ListingHandler) GetListing(c *gin.Context) {
	listing, err := h.listingServ.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "get listing", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listing": listing})
}

// DeleteListing maneja DELETE /admin/listings/:id.
func (h *ListingHandler) DeleteListing(c *gin.Context) {
	if err := h.listingServ.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, "delete listing", err)
		return
	}
	c.Status(http.StatusNoContent)
}
