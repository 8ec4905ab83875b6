package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"squadup/backend/internal/models"
)

// region --- DTOs ---

// GameInput defines the structure for creating or updating a game.
type GameInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
	TagIDs      []uint `json:"tag_ids"` // IDs of the tags to associate with the game
}

// GameDetailResponse defines the structure for a game with its tags.
type GameDetailResponse struct {
	ID          uint          `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	CoverURL    string        `json:"cover_url"`
	Tags        []TagResponse `json:"tags"`
}

func newGameDetailResponse(game models.Game) GameDetailResponse {
	var tagResponses []TagResponse
	for _, tag := range game.Tags {
		if tag != nil {
			tagResponses = append(tagResponses, newTagResponse(*tag))
		}
	}
	return GameDetailResponse{
		ID:          game.ID,
		Name:        game.Name,
		Description: game.Description,
		CoverURL:    game.CoverURL,
		Tags:        tagResponses,
	}
}

// endregion

// GameHandler handles the game catalog endpoints.
type GameHandler struct {
	db *gorm.DB
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(db *gorm.DB) *GameHandler {
	return &GameHandler{db: db}
}

// region --- Public Handlers ---

// List godoc
// @Summary      Get a list of games
// @Description  Retrieves a paginated list of games, with optional filtering by name and tags.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        q       query     string  false  "Search query for game name"
// @Param        tag_ids query     string  false  "Comma-separated list of Tag IDs"
// @Param        page    query     int     false  "Page number" default(1)
// @Param        limit   query     int     false  "Items per page" default(10)
// @Success      200 {object} PaginatedResponse[GameDetailResponse]
// @Router       /games [get]
func (h *GameHandler) List(c *gin.Context) {
	page, limit := pageParams(c.DefaultQuery("page", "1"), c.DefaultQuery("limit", "10"))
	offset := (page - 1) * limit
	searchQuery := c.Query("q")

	var tagIDs []uint
	for _, s := range splitCommaSeparated(c.Query("tag_ids")) {
		if id, err := strconv.ParseUint(s, 10, 32); err == nil {
			tagIDs = append(tagIDs, uint(id))
		}
	}

	dbQuery := h.db.Model(&models.Game{})
	if searchQuery != "" {
		dbQuery = dbQuery.Where("name LIKE ?", "%"+searchQuery+"%")
	}
	if len(tagIDs) > 0 {
		dbQuery = dbQuery.Joins("JOIN game_tags gt ON gt.game_id = games.id").
			Where("gt.tag_id IN (?)", tagIDs).
			Group("games.id")
	}

	// Count via a subquery when grouping, otherwise a plain count.
	var totalItems int64
	if len(tagIDs) > 0 {
		subQuery := dbQuery.Session(&gorm.Session{}).Select("games.id")
		if err := h.db.Table("(?) as sub", subQuery).Count(&totalItems).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count games"})
			return
		}
	} else {
		if err := dbQuery.Session(&gorm.Session{}).Count(&totalItems).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count games"})
			return
		}
	}

	var games []models.Game
	if err := dbQuery.Preload("Tags").Offset(offset).Limit(limit).Find(&games).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve games"})
		return
	}

	responses := make([]GameDetailResponse, 0, len(games))
	for _, game := range games {
		responses = append(responses, newGameDetailResponse(game))
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(responses, totalItems, page, limit))
}

// GetByID godoc
// @Summary      Get a single game by ID
// @Description  Retrieves details for a single game, including its tags.
// @Tags         games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} GameDetailResponse
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /games/{id} [get]
func (h *GameHandler) GetByID(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var game models.Game
	if err := h.db.Preload("Tags").First(&game, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}
	c.JSON(http.StatusOK, newGameDetailResponse(game))
}

// endregion

// region --- Admin Handlers ---

// Create godoc
// @Summary      Create a new game
// @Description  Creates a new game and associates it with given tags.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GameInput true "Game Info"
// @Success      201  {object}  GameDetailResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Admin access required"
// @Failure      409  {object}  ErrorResponse "Game already exists"
// @Router       /admin/games [post]
func (h *GameHandler) Create(c *gin.Context) {
	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var tags []*models.Tag
	if len(input.TagIDs) > 0 {
		h.db.Find(&tags, input.TagIDs)
	}

	game := models.Game{
		Name:        input.Name,
		Description: input.Description,
		CoverURL:    input.CoverURL,
		Tags:        tags,
	}
	if err := h.db.Create(&game).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Game already exists or another error occurred"})
		return
	}
	c.JSON(http.StatusCreated, newGameDetailResponse(game))
}

// Update godoc
// @Summary      Update a game
// @Description  Updates a game's details and replaces its tags.
// @Tags         admin-games
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int       true  "Game ID"
// @Param        input body      GameInput true  "New Game Info"
// @Success      200   {object}  GameDetailResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Admin access required"
// @Failure      404   {object}  ErrorResponse "Game not found"
// @Router       /admin/games/{id} [put]
func (h *GameHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var game models.Game
	if err := h.db.First(&game, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}

	var input GameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var tags []*models.Tag
	if len(input.TagIDs) > 0 {
		h.db.Find(&tags, input.TagIDs)
	}

	game.Name = input.Name
	game.Description = input.Description
	game.CoverURL = input.CoverURL

	if err := h.db.Model(&game).Association("Tags").Replace(tags); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update tags for game"})
		return
	}
	if err := h.db.Save(&game).Error; err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Game already exists or another error occurred"})
		return
	}

	h.db.Preload("Tags").First(&game, id)
	c.JSON(http.StatusOK, newGameDetailResponse(game))
}

// Delete godoc
// @Summary      Delete a game
// @Description  Deletes an existing game.
// @Tags         admin-games
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Game ID"
// @Success      200 {object} map[string]string "{"message": "Game deleted"}"
// @Failure      400 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "Admin access required"
// @Failure      404 {object} ErrorResponse "Game not found"
// @Router       /admin/games/{id} [delete]
func (h *GameHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	result := h.db.Select("Tags").Delete(&models.Game{}, id)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game deleted"})
}

// endregion

// Helper to split comma-separated strings
func splitCommaSeparated(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
