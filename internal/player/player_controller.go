package player

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rafiakbrr/scrimhub/internal/middleware"
	"github.com/rafiakbrr/scrimhub/pkg/responses"
)

// PlayerController handles player profile HTTP requests
type PlayerController struct {
	repo PlayerRepository
}

// NewPlayerController creates a new player controller
func NewPlayerController(repo PlayerRepository) *PlayerController {
	return &PlayerController{repo: repo}
}

// --- DTOs for requests ---

type ProfileRequest struct {
	Username       string   `json:"username" binding:"required,min=3,max=32"`
	GameID         string   `json:"game_id" binding:"required,max=16"`
	Role           string   `json:"role" binding:"required"`
	Rank           string   `json:"rank" binding:"required"`
	FavoriteHeroes []string `json:"favorite_heroes"`
	Bio            string   `json:"bio" binding:"max=1000"`
	AvatarURL      string   `json:"avatar_url"`
}

// UpsertMyProfile godoc
// @Summary Create or update my profile
// @Description Creates the profile on first call and updates it afterwards. Team association is managed by the team endpoints, not here.
// @Tags Players
// @Accept json
// @Produce json
// @Param profile body ProfileRequest true "Profile Data"
// @Success 200 {object} responses.SuccessResponse{data=Player} "Profile saved"
// @Failure 400 {object} responses.ErrorResponse "Invalid input"
// @Failure 401 {object} responses.ErrorResponse "Unauthorized"
// @Failure 409 {object} responses.ErrorResponse "Username taken"
// @Security ApiKeyAuth
// @Router /players/me [put]
func (pc *PlayerController) UpsertMyProfile(c *gin.Context) {
	playerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if !ValidRole(req.Role) {
		responses.SendError(c, http.StatusBadRequest, "Unknown role: "+req.Role)
		return
	}
	if !ValidRank(req.Rank) {
		responses.SendError(c, http.StatusBadRequest, "Unknown rank: "+req.Rank)
		return
	}
	if len(req.FavoriteHeroes) > MaxFavoriteHeroes {
		responses.SendError(c, http.StatusBadRequest, "At most 3 favorite heroes are allowed")
		return
	}

	// Username must stay unique across profiles.
	existing, err := pc.repo.GetPlayerByUsername(req.Username)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to check username: "+err.Error())
		return
	}
	if existing != nil && existing.ID != playerID {
		responses.SendError(c, http.StatusConflict, "Username already taken")
		return
	}

	heroes, err := json.Marshal(req.FavoriteHeroes)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid favorite heroes list")
		return
	}

	p := Player{
		Username:       req.Username,
		GameID:         req.GameID,
		Role:           req.Role,
		Rank:           req.Rank,
		FavoriteHeroes: string(heroes),
		Bio:            req.Bio,
		AvatarURL:      req.AvatarURL,
	}
	p.ID = playerID

	if err := pc.repo.UpsertPlayer(&p); err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to save profile: "+err.Error())
		return
	}

	saved, err := pc.repo.GetPlayerByID(playerID)
	if err != nil || saved == nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to reload profile")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Profile saved successfully", saved)
}

// GetMyProfile godoc
// @Summary Get my profile
// @Tags Players
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=Player}
// @Failure 404 {object} responses.ErrorResponse "Profile not set up yet"
// @Security ApiKeyAuth
// @Router /players/me [get]
func (pc *PlayerController) GetMyProfile(c *gin.Context) {
	playerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	p, err := pc.repo.GetPlayerByID(playerID)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve profile: "+err.Error())
		return
	}
	if p == nil {
		responses.SendError(c, http.StatusNotFound, "Profile not found. Complete profile setup first.")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Profile retrieved successfully", p)
}

// GetPlayerByID godoc
// @Summary Get a player's public profile
// @Tags Players
// @Produce json
// @Param player_id path uint true "Player ID"
// @Success 200 {object} responses.SuccessResponse{data=Player}
// @Failure 404 {object} responses.ErrorResponse "Player not found"
// @Router /players/{player_id} [get]
func (pc *PlayerController) GetPlayerByID(c *gin.Context) {
	playerID, err := strconv.ParseUint(c.Param("player_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid player ID")
		return
	}

	p, err := pc.repo.GetPlayerByID(uint(playerID))
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve player: "+err.Error())
		return
	}
	if p == nil {
		responses.SendError(c, http.StatusNotFound, "Player not found")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Player retrieved successfully", p)
}

// ListPlayers godoc
// @Summary List players ordered by rank tier
// @Tags Players
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} responses.PaginatedResponse{data=[]Player}
// @Router /players [get]
func (pc *PlayerController) ListPlayers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	players, total, err := pc.repo.ListPlayers(page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve players: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Players retrieved successfully", players, total, page, limit)
}
