package scrim

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rafiakbrr/scrimhub/internal/middleware"
	"github.com/rafiakbrr/scrimhub/pkg/responses"
)

// ScrimController handles calendar and scrim request HTTP requests
type ScrimController struct {
	service *ScrimService
}

// NewScrimController creates a new scrim controller
func NewScrimController(service *ScrimService) *ScrimController {
	return &ScrimController{service: service}
}

// --- DTOs for requests ---

type SetCapacityRequest struct {
	MaxDailyScrims int `json:"max_daily_scrims" binding:"required"`
}

type SetWindowRequest struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type CreateScrimRequest struct {
	TargetTeamID uint   `json:"target_team_id" binding:"required"`
	Date         string `json:"date" binding:"required"`
	Time         string `json:"time" binding:"required"`
	BestOf       int    `json:"best_of" binding:"required"`
	IsPublic     bool   `json:"is_public"`
}

type CompleteScrimRequest struct {
	WinnerTeamID uint   `json:"winner_team_id" binding:"required"`
	Score        string `json:"score" binding:"max=16"`
}

// SettingsResponse bundles a team's cap with its weekly windows.
type SettingsResponse struct {
	Settings *ScrimSettings       `json:"settings"`
	Windows  []AvailabilityWindow `json:"windows"`
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

func authedPlayer(c *gin.Context) (uint, bool) {
	playerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "Player not authenticated")
		return 0, false
	}
	return playerID, true
}

func teamIDParam(c *gin.Context) (uint, bool) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID")
		return 0, false
	}
	return uint(teamID), true
}

// GetSettings godoc
// @Summary Get a team's scrim settings
// @Description Returns the daily cap and weekly availability windows. Teams without configuration get the permissive default.
// @Tags Scrims
// @Produce json
// @Param team_id path uint true "Team ID"
// @Success 200 {object} responses.SuccessResponse{data=SettingsResponse}
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Router /teams/{team_id}/scrim-settings [get]
func (sc *ScrimController) GetSettings(c *gin.Context) {
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}

	settings, windows, err := sc.service.Settings(teamID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Scrim settings retrieved successfully",
		SettingsResponse{Settings: settings, Windows: windows})
}

// SetCapacity godoc
// @Summary Set a team's daily scrim cap
// @Description Leader only. Cap must be between 1 and 10.
// @Tags Scrims
// @Accept json
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param settings body SetCapacityRequest true "Capacity"
// @Success 200 {object} responses.SuccessResponse{data=ScrimSettings}
// @Failure 400 {object} responses.ErrorResponse "Cap out of range"
// @Failure 403 {object} responses.ErrorResponse "Not the leader"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/scrim-settings [put]
func (sc *ScrimController) SetCapacity(c *gin.Context) {
	callerID, ok := authedPlayer(c)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}

	var req SetCapacityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	settings, err := sc.service.SetCapacity(teamID, callerID, req.MaxDailyScrims)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Scrim capacity updated successfully", settings)
}

// SetWindow godoc
// @Summary Set an availability window for a day of week
// @Description Leader only. Day is 0 (Sunday) through 6 (Saturday); times are HH:MM with start before end.
// @Tags Scrims
// @Accept json
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param day path int true "Day of week (0-6)"
// @Param window body SetWindowRequest true "Window"
// @Success 200 {object} responses.SuccessResponse{data=AvailabilityWindow}
// @Failure 400 {object} responses.ErrorResponse "Bad day or time range"
// @Failure 403 {object} responses.ErrorResponse "Not the leader"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/scrim-settings/windows/{day} [put]
func (sc *ScrimController) SetWindow(c *gin.Context) {
	callerID, ok := authedPlayer(c)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid day")
		return
	}

	var req SetWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	window, err := sc.service.SetWindow(teamID, callerID, day, req.StartTime, req.EndTime)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Availability window saved successfully", window)
}

// ClearWindow godoc
// @Summary Remove the availability window for a day of week
// @Tags Scrims
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param day path int true "Day of week (0-6)"
// @Success 200 {object} responses.SuccessResponse "Window removed"
// @Failure 403 {object} responses.ErrorResponse "Not the leader"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/scrim-settings/windows/{day} [delete]
func (sc *ScrimController) ClearWindow(c *gin.Context) {
	callerID, ok := authedPlayer(c)
	if !ok {
		return
	}
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid day")
		return
	}

	if err := sc.service.ClearWindow(teamID, callerID, day); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Availability window removed successfully", nil)
}

// GetAvailability godoc
// @Summary Check whether a team can take another scrim on a date
// @Tags Scrims
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} responses.SuccessResponse
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Router /teams/{team_id}/availability [get]
func (sc *ScrimController) GetAvailability(c *gin.Context) {
	teamID, ok := teamIDParam(c)
	if !ok {
		return
	}
	date := c.Query("date")

	available, err := sc.service.IsAvailable(teamID, date)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Availability evaluated successfully", gin.H{
		"team_id":   teamID,
		"date":      date,
		"available": available,
	})
}

// GetOpponents godoc
// @Summary List candidate opponents for a date
// @Description Lists every other team with an availability flag for the given date.
// @Tags Scrims
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} responses.PaginatedResponse{data=[]TeamAvailability}
// @Security ApiKeyAuth
// @Router /scrims/opponents [get]
func (sc *ScrimController) GetOpponents(c *gin.Context) {
	callerID, ok := authedPlayer(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)

	opponents, total, err := sc.service.Opponents(callerID, c.Query("date"), page, limit)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Opponents retrieved successfully", opponents, total, page, limit)
}

// CreateRequest godoc
// @Summary Request a scrim with another team
// @Description Leader only. The target team must have an availability window for the date's weekday and free capacity.
// @Tags Scrims
// @Accept json
// @Produce json
// @Param request body CreateScrimRequest true "Scrim Request Data"
// @Success 201 {object} responses.SuccessResponse{data=ScrimRequest} "Request created"
// @Failure 400 {object} responses.ErrorResponse "Invalid input"
// @Failure 409 {object} responses.ErrorResponse "Target team unavailable"
// @Security ApiKeyAuth
// @Router /scrims [post]
func (sc *ScrimController) CreateRequest(c *gin.Context) {
	callerID, ok := authedPlayer(c)
	if !ok {
		return
	}

	var req CreateScrimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	request, err := sc.service.CreateRequest(callerID, req.TargetTeamID, req.Date, req.Time, req.BestOf, req.IsPublic)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Scrim request created successfully", request)
}

// ListRequests godoc
// @Summary List scrim requests
// @Description box=sent lists requests filed by my team, box=received lists requests targeting it, box=public lists public upcoming scrims.
// @Tags Scrims
// @Produce json
// @Param box query string false "sent, received or public" default(sent)
// @Param status query string false "Filter by status"
// @Success 200 {object} responses.PaginatedResponse{data=[]ScrimRequest}
// @Security ApiKeyAuth
// @Router /scrims [get]
func (sc *ScrimController) ListRequests(c *gin.Context) {
	callerID, ok := authedPlayer(c)
	if !ok {
		return
	}
	page, limit := pageParams(c)
	status := strings.ToLower(c.Query("status"))

	var (
		requests []ScrimRequest
		total    int64
		err      error
	)
	switch strings.ToLower(c.DefaultQuery("box", "sent")) {
	case "sent":
		requests, total, err = sc.service.SentRequests(callerID, status, page, limit)
	case "received":
		requests, total, err = sc.service.ReceivedRequests(callerID, status, page, limit)
	case "public":
		requests, total, err = sc.service.PublicScrims(page, limit)
	default:
		responses.SendError(c, http.StatusBadRequest, "box must be 'sent', 'received' or 'public'")
		return
	}
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Scrim requests retrieved successfully", requests, total, page, limit)
}

// RespondToRequest godoc
// @Summary Accept or reject a scrim request
// @Description Target team's leader only. Accepting re-validates the daily cap; if accepts alone already fill it the request stays pending.
// @Tags Scrims
// @Produce json
// @Param request_id path uint true "Scrim Request ID"
// @Param action path string true "Action to perform: 'accept' or 'reject'"
// @Success 200 {object} responses.SuccessResponse{data=ScrimRequest}
// @Failure 403 {object} responses.ErrorResponse "Not the target team's leader"
// @Failure 409 {object} responses.ErrorResponse "Capacity exhausted or not pending"
// @Security ApiKeyAuth
// @Router /scrims/{request_id}/{action} [put]
func (sc *ScrimController) RespondToRequest(c *gin.Context) {
	callerID, ok := authedPlayer(c)
	if !ok {
		return
	}

	requestID, err := strconv.ParseUint(c.Param("request_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid request ID")
		return
	}
	action := strings.ToLower(c.Param("action"))
	if action != "accept" && action != "reject" {
		responses.SendError(c, http.StatusBadRequest, "Invalid action. Must be 'accept' or 'reject'.")
		return
	}

	request, err := sc.service.Respond(uint(requestID), callerID, action == "accept")
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Scrim request "+action+"ed", request)
}

// CompleteRequest godoc
// @Summary Report the result of an accepted scrim
// @Description Either team's leader may report. Applies the win/loss deltas to both rosters.
// @Tags Scrims
// @Accept json
// @Produce json
// @Param request_id path uint true "Scrim Request ID"
// @Param result body CompleteScrimRequest true "Result"
// @Success 200 {object} responses.SuccessResponse{data=ScrimRequest}
// @Failure 409 {object} responses.ErrorResponse "Request not accepted"
// @Security ApiKeyAuth
// @Router /scrims/{request_id}/complete [post]
func (sc *ScrimController) CompleteRequest(c *gin.Context) {
	callerID, ok := authedPlayer(c)
	if !ok {
		return
	}

	requestID, err := strconv.ParseUint(c.Param("request_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid request ID")
		return
	}

	var req CompleteScrimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	request, err := sc.service.Complete(uint(requestID), callerID, req.WinnerTeamID, req.Score)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Scrim completed and records updated", request)
}

// DeleteRequest godoc
// @Summary Archive a finished scrim request
// @Description Requesting team's leader only; the request must be rejected or completed.
// @Tags Scrims
// @Produce json
// @Param request_id path uint true "Scrim Request ID"
// @Success 200 {object} responses.SuccessResponse "Request deleted"
// @Failure 409 {object} responses.ErrorResponse "Request still active"
// @Security ApiKeyAuth
// @Router /scrims/{request_id} [delete]
func (sc *ScrimController) DeleteRequest(c *gin.Context) {
	callerID, ok := authedPlayer(c)
	if !ok {
		return
	}

	requestID, err := strconv.ParseUint(c.Param("request_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid request ID")
		return
	}

	if err := sc.service.DeleteRequest(uint(requestID), callerID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Scrim request deleted successfully", nil)
}
