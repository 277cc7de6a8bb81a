package team

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rafiakbrr/scrimhub/pkg/apperr"
)

// TeamService holds the roster and application rules. Controllers stay thin;
// everything here returns apperr kinds so callers can react to the failure
// mode rather than parse messages.
type TeamService struct {
	repo TeamRepository
}

// NewTeamService creates a new team service
func NewTeamService(repo TeamRepository) *TeamService {
	return &TeamService{repo: repo}
}

// lockTeam wraps WithTeamLock and turns a missing team row into a NotFound.
func (s *TeamService) lockTeam(teamID uint, fn func(TeamRepository) error) error {
	err := s.repo.WithTeamLock(teamID, fn)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("team %d", teamID)
	}
	return err
}

// CreateTeam creates a roster led by leaderID. The creator's profile gains
// the team back-reference and the leader flag in the same transaction.
func (s *TeamService) CreateTeam(leaderID uint, name, tag string) (*Team, error) {
	name = strings.TrimSpace(name)
	tag = strings.TrimSpace(tag)
	if name == "" || len(name) > 100 {
		return nil, apperr.InvalidArgument("team name must be 1-100 characters")
	}
	if tag == "" || len(tag) > 8 {
		return nil, apperr.InvalidArgument("team tag must be 1-8 characters")
	}

	p, err := s.repo.GetPlayer(leaderID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("player profile %d", leaderID)
	}
	if p.TeamID != nil {
		return nil, apperr.Conflict("player %d already belongs to a team", leaderID)
	}

	existing, err := s.repo.GetTeamByTag(tag)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("team tag %q is already taken", tag)
	}

	t := &Team{Name: name, Tag: tag, LeaderID: leaderID}
	err = s.repo.WithTransaction(func(repo TeamRepository) error {
		if err := repo.CreateTeam(t); err != nil {
			return err
		}
		ok, err := repo.AssignPlayerToTeam(leaderID, t.ID, true)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Conflict("player %d already belongs to a team", leaderID)
		}
		return repo.AddMember(&TeamMember{TeamID: t.ID, PlayerID: leaderID, JoinedAt: time.Now()})
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// GetTeam returns a roster by id.
func (s *TeamService) GetTeam(teamID uint) (*Team, error) {
	t, err := s.repo.GetTeamByID(teamID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("team %d", teamID)
	}
	return t, nil
}

// ListTeams returns rosters ordered by wins.
func (s *TeamService) ListTeams(page, limit int, search string) ([]Team, int64, error) {
	return s.repo.ListTeams(page, limit, search)
}

// TeamForPlayer returns the roster the player currently sits on.
func (s *TeamService) TeamForPlayer(playerID uint) (*Team, error) {
	t, err := s.repo.GetTeamByPlayerID(playerID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("player %d is not on a team", playerID)
	}
	return t, nil
}

// Members lists a roster's member rows.
func (s *TeamService) Members(teamID uint, page, limit int) ([]TeamMember, int64, error) {
	if _, err := s.GetTeam(teamID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListMembers(teamID, page, limit)
}

// addMemberLocked performs the admission writes. Must run under the team lock.
func addMemberLocked(repo TeamRepository, teamID, playerID uint) error {
	ok, err := repo.AssignPlayerToTeam(playerID, teamID, false)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Conflict("player %d already belongs to a team", playerID)
	}
	return repo.AddMember(&TeamMember{TeamID: teamID, PlayerID: playerID, JoinedAt: time.Now()})
}

// AddMember places a player on the roster. Adding a player who is already on
// any roster, including this one, is a Conflict, never a silent no-op.
func (s *TeamService) AddMember(teamID, playerID uint) error {
	p, err := s.repo.GetPlayer(playerID)
	if err != nil {
		return err
	}
	if p == nil {
		return apperr.NotFound("player profile %d", playerID)
	}
	return s.lockTeam(teamID, func(repo TeamRepository) error {
		onTeam, err := repo.IsPlayerOnAnyTeam(playerID)
		if err != nil {
			return err
		}
		if onTeam {
			return apperr.Conflict("player %d already belongs to a team", playerID)
		}
		return addMemberLocked(repo, teamID, playerID)
	})
}

// RemoveMember removes a player from the roster. Only the leader may call it,
// and the leader cannot be removed (leadership transfer is not supported).
func (s *TeamService) RemoveMember(teamID, callerID, playerID uint) error {
	t, err := s.GetTeam(teamID)
	if err != nil {
		return err
	}
	if t.LeaderID != callerID {
		return apperr.Unauthorized("only the team leader can remove members")
	}
	if playerID == t.LeaderID {
		return apperr.InvalidState("the team leader cannot be removed")
	}
	return s.lockTeam(teamID, func(repo TeamRepository) error {
		member, err := repo.GetMember(teamID, playerID)
		if err != nil {
			return err
		}
		if member == nil {
			return apperr.NotFound("player %d is not a member of team %d", playerID, teamID)
		}
		if err := repo.RemoveMember(teamID, playerID); err != nil {
			return err
		}
		return repo.ClearPlayerTeam(playerID)
	})
}

// Leave removes the caller from their roster. Leaders cannot leave.
func (s *TeamService) Leave(playerID uint) error {
	t, err := s.repo.GetTeamByPlayerID(playerID)
	if err != nil {
		return err
	}
	if t == nil {
		return apperr.NotFound("player %d is not on a team", playerID)
	}
	if t.LeaderID == playerID {
		return apperr.InvalidState("the team leader cannot leave the team")
	}
	return s.lockTeam(t.ID, func(repo TeamRepository) error {
		if err := repo.RemoveMember(t.ID, playerID); err != nil {
			return err
		}
		return repo.ClearPlayerTeam(playerID)
	})
}

// Apply files a join application from playerID against teamID. The pending
// uniqueness check runs under the team lock, so two concurrent applications
// from the same player cannot both pass.
func (s *TeamService) Apply(teamID, playerID uint, message string) (*Application, error) {
	if len(message) > 500 {
		return nil, apperr.InvalidArgument("application message too long")
	}

	p, err := s.repo.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("player profile %d", playerID)
	}
	if p.TeamID != nil {
		return nil, apperr.InvalidState("player %d already belongs to a team", playerID)
	}

	app := &Application{TeamID: teamID, PlayerID: playerID, Message: message, Status: ApplicationPending}
	err = s.lockTeam(teamID, func(repo TeamRepository) error {
		member, err := repo.GetMember(teamID, playerID)
		if err != nil {
			return err
		}
		if member != nil {
			return apperr.InvalidState("player %d is already a member of team %d", playerID, teamID)
		}
		pending, err := repo.GetPendingApplication(teamID, playerID)
		if err != nil {
			return err
		}
		if pending != nil {
			return apperr.Conflict("a pending application already exists for this team")
		}
		return repo.CreateApplication(app)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// Resolve accepts or declines a pending application. Only the target team's
// leader may call it. Acceptance adds the member, sets the profile
// back-reference and deletes the application atomically; a player who already
// became a member through a racing call is treated as applied, not re-added.
func (s *TeamService) Resolve(applicationID, callerID uint, accept bool) (*Application, error) {
	app, err := s.repo.GetApplicationByID(applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, apperr.NotFound("application %d", applicationID)
	}

	t, err := s.GetTeam(app.TeamID)
	if err != nil {
		return nil, err
	}
	if t.LeaderID != callerID {
		return nil, apperr.Unauthorized("only the team leader can resolve applications")
	}

	err = s.lockTeam(app.TeamID, func(repo TeamRepository) error {
		current, err := repo.GetApplicationByID(applicationID)
		if err != nil {
			return err
		}
		if current == nil {
			return apperr.NotFound("application %d was already resolved", applicationID)
		}
		if current.Status != ApplicationPending {
			return apperr.InvalidState("application %d is not pending", applicationID)
		}

		if accept {
			member, err := repo.GetMember(app.TeamID, app.PlayerID)
			if err != nil {
				return err
			}
			if member == nil {
				if err := addMemberLocked(repo, app.TeamID, app.PlayerID); err != nil {
					return err
				}
			}
			app.Status = ApplicationAccepted
		} else {
			app.Status = ApplicationDeclined
		}
		return repo.DeleteApplication(applicationID)
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

// ApplicationsForTeam lists a roster's applications. Leader only.
func (s *TeamService) ApplicationsForTeam(teamID, callerID uint, status string, page, limit int) ([]Application, int64, error) {
	t, err := s.GetTeam(teamID)
	if err != nil {
		return nil, 0, err
	}
	if t.LeaderID != callerID {
		return nil, 0, apperr.Unauthorized("only the team leader can view applications")
	}
	return s.repo.ListApplicationsByTeam(teamID, status, page, limit)
}

// ApplicationsForPlayer lists the caller's own applications.
func (s *TeamService) ApplicationsForPlayer(playerID uint, status string, page, limit int) ([]Application, int64, error) {
	return s.repo.ListApplicationsByPlayer(playerID, status, page, limit)
}

// CancelApplication withdraws the caller's own pending application.
func (s *TeamService) CancelApplication(applicationID, callerID uint) error {
	app, err := s.repo.GetApplicationByID(applicationID)
	if err != nil {
		return err
	}
	if app == nil {
		return apperr.NotFound("application %d", applicationID)
	}
	if app.PlayerID != callerID {
		return apperr.Unauthorized("only the applicant can cancel an application")
	}
	if app.Status != ApplicationPending {
		return apperr.InvalidState("application %d is not pending", applicationID)
	}
	return s.repo.DeleteApplication(applicationID)
}
