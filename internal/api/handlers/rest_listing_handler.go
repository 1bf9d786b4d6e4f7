package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"localpro/browse/internal/models"
	"localpro/browse/internal/pipeline"
	"localpro/browse/internal/services"
)

// RestListingHandler handles REST requests for listings.
type RestListingHandler struct {
	listingService services.IListingService
}

// NewRestListingHandler creates a new RestListingHandler.
func NewRestListingHandler(listingService services.IListingService) *RestListingHandler {
	return &RestListingHandler{listingService: listingService}
}

// parseFilterState reads status, category, q, sort and in_stock.
func parseFilterState(c *gin.Context) (models.FilterState, error) {
	f := models.FilterState{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Sort:     models.SortMode(strings.ToLower(c.Query("sort"))),
	}
	if raw := c.Query("in_stock"); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			return f, errors.New("in_stock must be true or false")
		}
		f.InStock = &inStock
	}
	return f, nil
}

// ListListings handles GET /v1/listing/:kind
func (h *RestListingHandler) ListListings(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	state, err := parseFilterState(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ownerID string
	if c.Query("owner") == "me" || kind.IsPersonal() {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		ownerID = userID
	}

	filter := models.FetchFilterFrom(state, ownerID)
	// Invalid paging values fall back to the defaults.
	filter.Page, _ = strconv.Atoi(c.Query("page"))
	filter.Limit, _ = strconv.Atoi(c.Query("limit"))

	listings, err := h.listingService.FetchListings(c.Request.Context(), kind, filter)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch listings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": pipeline.Apply(listings, state)})
}

// GetListingByID handles GET /v1/listing/:kind/:id
func (h *RestListingHandler) GetListingByID(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	listing, err := h.listingService.FindListingByID(c.Request.Context(), c.Param("id"))
	if err == nil && listing.Kind != kind {
		err = services.ErrNotFound
	}
	if err == nil && kind.IsPersonal() {
		userID, ok := requireUser(c)
		if !ok {
			return
		}
		if listing.OwnerID != userID {
			err = services.ErrNotFound
		}
	}
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve listing"})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// CreateListing handles POST /v1/admin/listing/:kind
func (h *RestListingHandler) CreateListing(c *gin.Context) {
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	var listing models.Listing
	if err := c.ShouldBindJSON(&listing); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid listing payload"})
		return
	}
	if strings.TrimSpace(listing.Title) == "" && strings.TrimSpace(listing.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A listing needs a title or a name"})
		return
	}
	listing.Kind = kind

	created, err := h.listingService.CreateListing(c.Request.Context(), &listing)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create listing"})
		return
	}
	c.JSON(http.StatusCreated, created)
}
