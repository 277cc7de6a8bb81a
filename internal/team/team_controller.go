package team

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rafiakbrr/scrimhub/internal/middleware"
	"github.com/rafiakbrr/scrimhub/pkg/responses"
)

// TeamController handles roster and application HTTP requests
type TeamController struct {
	service *TeamService
}

// NewTeamController creates a new team controller
func NewTeamController(service *TeamService) *TeamController {
	return &TeamController{service: service}
}

// --- DTOs for requests ---

type CreateTeamRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
	Tag  string `json:"tag" binding:"required,min=1,max=8"`
}

type ApplyRequest struct {
	Message string `json:"message" binding:"max=500"`
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

// CreateTeam godoc
// @Summary Create a new team
// @Description Creates a team with the authenticated player as leader. A player can lead or join at most one team.
// @Tags Teams
// @Accept json
// @Produce json
// @Param team body CreateTeamRequest true "Team Creation Data"
// @Success 201 {object} responses.SuccessResponse{data=Team} "Team created"
// @Failure 400 {object} responses.ErrorResponse "Invalid input"
// @Failure 409 {object} responses.ErrorResponse "Already on a team or tag taken"
// @Security ApiKeyAuth
// @Router /teams [post]
func (tc *TeamController) CreateTeam(c *gin.Context) {
	playerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	var req CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	t, err := tc.service.CreateTeam(playerID, req.Name, req.Tag)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Team created successfully", t)
}

// GetTeamByID godoc
// @Summary Get a team by ID
// @Tags Teams
// @Produce json
// @Param team_id path uint true "Team ID"
// @Success 200 {object} responses.SuccessResponse{data=Team}
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Router /teams/{team_id} [get]
func (tc *TeamController) GetTeamByID(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID")
		return
	}

	t, err := tc.service.GetTeam(uint(teamID))
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team retrieved successfully", t)
}

// GetAllTeams godoc
// @Summary List teams
// @Tags Teams
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Param search query string false "Filter by name or tag"
// @Success 200 {object} responses.PaginatedResponse{data=[]Team}
// @Router /teams [get]
func (tc *TeamController) GetAllTeams(c *gin.Context) {
	page, limit := pageParams(c)
	search := c.Query("search")

	teams, total, err := tc.service.ListTeams(page, limit, search)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve teams: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Teams retrieved successfully", teams, total, page, limit)
}

// GetMyTeam godoc
// @Summary Get the team the authenticated player is on
// @Tags Teams
// @Produce json
// @Success 200 {object} responses.SuccessResponse{data=Team}
// @Failure 404 {object} responses.ErrorResponse "Not on a team"
// @Security ApiKeyAuth
// @Router /users/me/team [get]
func (tc *TeamController) GetMyTeam(c *gin.Context) {
	playerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	t, err := tc.service.TeamForPlayer(playerID)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Team retrieved successfully", t)
}

// GetTeamMembers godoc
// @Summary List a team's members
// @Tags Teams
// @Produce json
// @Param team_id path uint true "Team ID"
// @Success 200 {object} responses.PaginatedResponse{data=[]TeamMember}
// @Failure 404 {object} responses.ErrorResponse "Team not found"
// @Router /teams/{team_id}/members [get]
func (tc *TeamController) GetTeamMembers(c *gin.Context) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID")
		return
	}
	page, limit := pageParams(c)

	members, total, err := tc.service.Members(uint(teamID), page, limit)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Members retrieved successfully", members, total, page, limit)
}

// RemoveTeamMember godoc
// @Summary Remove a member from the team
// @Description Leader only. The leader cannot be removed.
// @Tags Teams
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param player_id path uint true "Player ID"
// @Success 200 {object} responses.SuccessResponse "Member removed"
// @Failure 403 {object} responses.ErrorResponse "Not the leader"
// @Failure 409 {object} responses.ErrorResponse "Cannot remove the leader"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/members/{player_id} [delete]
func (tc *TeamController) RemoveTeamMember(c *gin.Context) {
	callerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID")
		return
	}
	targetID, err := strconv.ParseUint(c.Param("player_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid player ID")
		return
	}

	if err := tc.service.RemoveMember(uint(teamID), callerID, uint(targetID)); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Member removed successfully", nil)
}

// LeaveTeam godoc
// @Summary Leave the team
// @Description The leader cannot leave; leadership transfer is not supported.
// @Tags Teams
// @Produce json
// @Param team_id path uint true "Team ID"
// @Success 200 {object} responses.SuccessResponse "Left the team"
// @Failure 409 {object} responses.ErrorResponse "Leader cannot leave"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/leave [post]
func (tc *TeamController) LeaveTeam(c *gin.Context) {
	playerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	if err := tc.service.Leave(playerID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Left the team successfully", nil)
}

// --- Application Handlers ---

// RequestToJoinTeam godoc
// @Summary Apply to join a team
// @Description Files a join application. At most one pending application per (team, player) pair.
// @Tags Applications
// @Accept json
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param application body ApplyRequest true "Application Data"
// @Success 201 {object} responses.SuccessResponse{data=Application} "Application filed"
// @Failure 409 {object} responses.ErrorResponse "Already on a team or already applied"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/applications [post]
func (tc *TeamController) RequestToJoinTeam(c *gin.Context) {
	playerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID")
		return
	}

	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	app, err := tc.service.Apply(uint(teamID), playerID, req.Message)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Application sent successfully", app)
}

// GetApplicationsForTeam godoc
// @Summary List applications for a team
// @Description Leader only. Defaults to pending applications.
// @Tags Applications
// @Produce json
// @Param team_id path uint true "Team ID"
// @Param status query string false "Filter by status" default(pending)
// @Success 200 {object} responses.PaginatedResponse{data=[]Application}
// @Failure 403 {object} responses.ErrorResponse "Not the leader"
// @Security ApiKeyAuth
// @Router /teams/{team_id}/applications [get]
func (tc *TeamController) GetApplicationsForTeam(c *gin.Context) {
	callerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid team ID")
		return
	}
	page, limit := pageParams(c)
	status := strings.ToLower(c.DefaultQuery("status", ApplicationPending))

	apps, total, err := tc.service.ApplicationsForTeam(uint(teamID), callerID, status, page, limit)
	if err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Applications retrieved successfully", apps, total, page, limit)
}

// GetMyApplications godoc
// @Summary List my applications
// @Tags Applications
// @Produce json
// @Param status query string false "Filter by status"
// @Success 200 {object} responses.PaginatedResponse{data=[]Application}
// @Security ApiKeyAuth
// @Router /users/me/applications [get]
func (tc *TeamController) GetMyApplications(c *gin.Context) {
	playerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	page, limit := pageParams(c)
	status := strings.ToLower(c.Query("status"))

	apps, total, err := tc.service.ApplicationsForPlayer(playerID, status, page, limit)
	if err != nil {
		responses.SendError(c, http.StatusInternalServerError, "Failed to retrieve applications: "+err.Error())
		return
	}
	responses.SendPaginated(c, http.StatusOK, "Applications retrieved successfully", apps, total, page, limit)
}

// RespondToApplication godoc
// @Summary Accept or decline an application
// @Description Leader only. Accepting adds the player to the roster and deletes the application; declining deletes it.
// @Tags Applications
// @Produce json
// @Param application_id path uint true "Application ID"
// @Param action path string true "Action to perform: 'accept' or 'decline'"
// @Success 200 {object} responses.SuccessResponse{data=Application} "Application resolved"
// @Failure 403 {object} responses.ErrorResponse "Not the leader"
// @Failure 404 {object} responses.ErrorResponse "Application already resolved"
// @Security ApiKeyAuth
// @Router /applications/{application_id}/{action} [put]
func (tc *TeamController) RespondToApplication(c *gin.Context) {
	callerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	applicationID, err := strconv.ParseUint(c.Param("application_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid application ID")
		return
	}
	action := strings.ToLower(c.Param("action"))
	if action != "accept" && action != "decline" {
		responses.SendError(c, http.StatusBadRequest, "Invalid action. Must be 'accept' or 'decline'.")
		return
	}

	app, err := tc.service.Resolve(uint(applicationID), callerID, action == "accept")
	if err != nil {
		responses.SendAppError(c, err)
		return
	}

	if action == "accept" {
		responses.SendSuccess(c, http.StatusOK, "Application accepted and member added", app)
	} else {
		responses.SendSuccess(c, http.StatusOK, "Application declined", app)
	}
}

// CancelApplication godoc
// @Summary Cancel my pending application
// @Tags Applications
// @Produce json
// @Param application_id path uint true "Application ID"
// @Success 200 {object} responses.SuccessResponse "Application cancelled"
// @Failure 403 {object} responses.ErrorResponse "Not the applicant"
// @Security ApiKeyAuth
// @Router /applications/{application_id} [delete]
func (tc *TeamController) CancelApplication(c *gin.Context) {
	callerID, err := middleware.GetPlayerIDFromContext(c)
	if err != nil {
		responses.SendError(c, http.StatusUnauthorized, "Player not authenticated")
		return
	}

	applicationID, err := strconv.ParseUint(c.Param("application_id"), 10, 32)
	if err != nil {
		responses.SendError(c, http.StatusBadRequest, "Invalid application ID")
		return
	}

	if err := tc.service.CancelApplication(uint(applicationID), callerID); err != nil {
		responses.SendAppError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Application cancelled successfully", nil)
}
