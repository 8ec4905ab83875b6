package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"squadup/backend/internal/models"
)

// StoreInput defines the structure for creating or updating a store.
type StoreInput struct {
	Name    string `json:"name" binding:"required"`
	URL     string `json:"url"`
	Address string `json:"address"`
}

// StoreResponse defines the structure for a store.
type StoreResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	URL     string `json:"url,omitempty"`
	Address string `json:"address,omitempty"`
}

func newStoreResponse(store models.Store) StoreResponse {
	return StoreResponse{
		ID:      store.ID,
		Name:    store.Name,
		URL:     store.URL,
		Address: store.Address,
	}
}

// StoreHandler handles the store catalog endpoints.
type StoreHandler struct {
	db *gorm.DB
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(db *gorm.DB) *StoreHandler {
	return &StoreHandler{db: db}
}

// List godoc
// @Summary      Get all stores
// @Description  Retrieves a list of all known stores.
// @Tags         stores
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   StoreResponse
// @Router       /stores [get]
func (h *StoreHandler) List(c *gin.Context) {
	var stores []models.Store
	h.db.Find(&stores)

	responses := make([]StoreResponse, 0, len(stores))
	for _, store := range stores {
		responses = append(responses, newStoreResponse(store))
	}
	c.JSON(http.StatusOK, responses)
}

// Create godoc
// @Summary      Create a new store
// @Description  Creates a new store entry.
// @Tags         admin-stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body StoreInput true "Store Info"
// @Success      201  {object}  StoreResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      409  {object}  ErrorResponse "Store already exists"
// @Router       /admin/stores [post]
func (h *StoreHandler) Create(c *gin.Context) {
	var input StoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := models.Store{Name: input.Name, URL: input.URL, Address: input.Address}
	if err := h.db.Create(&store).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Store already exists or another error occurred"})
		return
	}
	c.JSON(http.StatusCreated, newStoreResponse(store))
}

// Update godoc
// @Summary      Update a store
// @Description  Updates an existing store entry.
// @Tags         admin-stores
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int        true  "Store ID"
// @Param        input body      StoreInput true  "New Store Info"
// @Success      200   {object}  StoreResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Admin access required"
// @Failure      404   {object}  ErrorResponse "Store not found"
// @Router       /admin/stores/{id} [put]
func (h *StoreHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input StoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var store models.Store
	if err := h.db.First(&store, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	store.Name = input.Name
	store.URL = input.URL
	store.Address = input.Address
	if err := h.db.Save(&store).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Store already exists or another error occurred"})
		return
	}
	c.JSON(http.StatusOK, newStoreResponse(store))
}

// Delete godoc
// @Summary      Delete a store
// @Description  Deletes an existing store.
// @Tags         admin-stores
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Store ID"
// @Success      200  {object}  map[string]string "{"message": "Store deleted"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      404  {object}  ErrorResponse "Store not found"
// @Router       /admin/stores/{id} [delete]
func (h *StoreHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result := h.db.Delete(&models.Store{}, id)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Store deleted"})
}
