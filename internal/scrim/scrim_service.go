package scrim

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/rafiakbrr/scrimhub/internal/team"
	"github.com/rafiakbrr/scrimhub/pkg/apperr"
)

// ScrimService holds the availability calendar and negotiation rules. Every
// mutating decision against a target team runs under that team's lock so the
// capacity invariant holds under concurrent callers.
type ScrimService struct {
	repo ScrimRepository
}

// NewScrimService creates a new scrim service
func NewScrimService(repo ScrimRepository) *ScrimService {
	return &ScrimService{repo: repo}
}

// TeamAvailability pairs a candidate opponent with its availability for a
// given date.
type TeamAvailability struct {
	Team      team.Team `json:"team"`
	Available bool      `json:"available"`
}

func (s *ScrimService) lockTeam(teamID uint, fn func(ScrimRepository) error) error {
	err := s.repo.WithTeamLock(teamID, fn)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("team %d", teamID)
	}
	return err
}

func (s *ScrimService) getTeam(teamID uint) (*team.Team, error) {
	t, err := s.repo.GetTeam(teamID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("team %d", teamID)
	}
	return t, nil
}

// leaderOf returns the caller's team, requiring the caller to be its leader.
func (s *ScrimService) leaderOf(teamID, callerID uint, action string) (*team.Team, error) {
	t, err := s.getTeam(teamID)
	if err != nil {
		return nil, err
	}
	if t.LeaderID != callerID {
		return nil, apperr.Unauthorized("only the team leader can %s", action)
	}
	return t, nil
}

// Settings returns a team's cap and windows. A team that never configured a
// calendar gets the permissive default: default cap, no windows.
func (s *ScrimService) Settings(teamID uint) (*ScrimSettings, []AvailabilityWindow, error) {
	if _, err := s.getTeam(teamID); err != nil {
		return nil, nil, err
	}
	settings, err := s.repo.GetSettings(teamID)
	if err != nil {
		return nil, nil, err
	}
	if settings == nil {
		settings = &ScrimSettings{TeamID: teamID, MaxDailyScrims: DefaultMaxDailyScrims}
	}
	windows, err := s.repo.GetWindows(teamID)
	if err != nil {
		return nil, nil, err
	}
	return settings, windows, nil
}

// SetCapacity sets the daily booking cap. Leader only, cap within [1, 10].
func (s *ScrimService) SetCapacity(teamID, callerID uint, maxDailyScrims int) (*ScrimSettings, error) {
	if maxDailyScrims < MinDailyScrims || maxDailyScrims > MaxDailyScrims {
		return nil, apperr.InvalidArgument("max daily scrims must be between %d and %d", MinDailyScrims, MaxDailyScrims)
	}
	if _, err := s.leaderOf(teamID, callerID, "change scrim settings"); err != nil {
		return nil, err
	}
	settings := &ScrimSettings{TeamID: teamID, MaxDailyScrims: maxDailyScrims}
	if err := s.repo.UpsertSettings(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// SetWindow sets the availability window for a day of week. Leader only.
func (s *ScrimService) SetWindow(teamID, callerID uint, day int, start, end string) (*AvailabilityWindow, error) {
	if day < 0 || day > 6 {
		return nil, apperr.InvalidArgument("day must be between 0 (Sunday) and 6 (Saturday)")
	}
	startAt, err := ParseClock(start)
	if err != nil {
		return nil, apperr.InvalidArgument("start time must be HH:MM")
	}
	endAt, err := ParseClock(end)
	if err != nil {
		return nil, apperr.InvalidArgument("end time must be HH:MM")
	}
	if !startAt.Before(endAt) {
		return nil, apperr.InvalidArgument("start time %s must be before end time %s", start, end)
	}
	if _, err := s.leaderOf(teamID, callerID, "change scrim settings"); err != nil {
		return nil, err
	}
	window := &AvailabilityWindow{TeamID: teamID, Day: day, StartTime: start, EndTime: end}
	if err := s.repo.UpsertWindow(window); err != nil {
		return nil, err
	}
	return window, nil
}

// ClearWindow removes the availability window for a day of week. Leader only.
func (s *ScrimService) ClearWindow(teamID, callerID uint, day int) error {
	if day < 0 || day > 6 {
		return apperr.InvalidArgument("day must be between 0 (Sunday) and 6 (Saturday)")
	}
	if _, err := s.leaderOf(teamID, callerID, "change scrim settings"); err != nil {
		return err
	}
	return s.repo.DeleteWindow(teamID, day)
}

// availableOn evaluates the admission rule against the given repository view.
// Callers that are about to write must pass the locked repository so the
// count cannot go stale between check and insert.
func availableOn(repo ScrimRepository, teamID uint, date time.Time, statuses []RequestStatus) (bool, error) {
	settings, err := repo.GetSettings(teamID)
	if err != nil {
		return false, err
	}
	windows, err := repo.GetWindows(teamID)
	if err != nil {
		return false, err
	}

	// A team with any calendar configuration is only available on days it
	// declared a window for. A team with no configuration at all is
	// permissively available every day at the default cap.
	if settings != nil || len(windows) > 0 {
		dayHasWindow := false
		for _, w := range windows {
			if w.Day == int(date.Weekday()) {
				dayHasWindow = true
				break
			}
		}
		if !dayHasWindow {
			return false, nil
		}
	}

	maxDaily := DefaultMaxDailyScrims
	if settings != nil {
		maxDaily = settings.MaxDailyScrims
	}

	count, err := repo.CountRequestsForDate(teamID, date.Format(DateLayout), statuses)
	if err != nil {
		return false, err
	}
	return count < int64(maxDaily), nil
}

// IsAvailable reports whether the team can admit one more scrim on the date.
// Pending and accepted requests both count toward the cap.
func (s *ScrimService) IsAvailable(teamID uint, date string) (bool, error) {
	if _, err := s.getTeam(teamID); err != nil {
		return false, err
	}
	day, err := ParseDate(date)
	if err != nil {
		return false, apperr.InvalidArgument("date must be YYYY-MM-DD")
	}
	return availableOn(s.repo, teamID, day, []RequestStatus{StatusPending, StatusAccepted})
}

// CreateRequest files a scrim request from the caller's team against the
// target. The availability check and the insert form a single admission
// decision under the target team's lock.
func (s *ScrimService) CreateRequest(callerID, targetTeamID uint, date, timeOfDay string, bestOf int, isPublic bool) (*ScrimRequest, error) {
	requesting, err := s.repo.GetTeamByPlayerID(callerID)
	if err != nil {
		return nil, err
	}
	if requesting == nil {
		return nil, apperr.InvalidState("player %d is not on a team", callerID)
	}
	if requesting.LeaderID != callerID {
		return nil, apperr.Unauthorized("only the team leader can request scrims")
	}
	if requesting.ID == targetTeamID {
		return nil, apperr.InvalidArgument("a team cannot scrim against itself")
	}
	if !ValidBestOf(bestOf) {
		return nil, apperr.InvalidArgument("best-of must be 1, 3, 5 or 7")
	}

	day, err := ParseDate(date)
	if err != nil {
		return nil, apperr.InvalidArgument("date must be YYYY-MM-DD")
	}
	if date < time.Now().Format(DateLayout) {
		return nil, apperr.InvalidArgument("date %s is in the past", date)
	}
	if _, err := ParseClock(timeOfDay); err != nil {
		return nil, apperr.InvalidArgument("time must be HH:MM")
	}

	if _, err := s.getTeam(targetTeamID); err != nil {
		return nil, err
	}

	req := &ScrimRequest{
		RequestingTeamID: requesting.ID,
		TargetTeamID:     targetTeamID,
		Date:             date,
		Time:             timeOfDay,
		BestOf:           bestOf,
		IsPublic:         isPublic,
		Status:           StatusPending,
	}
	err = s.lockTeam(targetTeamID, func(repo ScrimRepository) error {
		available, err := availableOn(repo, targetTeamID, day, []RequestStatus{StatusPending, StatusAccepted})
		if err != nil {
			return err
		}
		if !available {
			return apperr.Unavailable("team %d cannot take another scrim on %s", targetTeamID, date)
		}
		return repo.CreateRequest(req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Respond accepts or rejects a pending request. Only the target team's
// leader may call it. Accepting re-validates capacity against requests that
// were already accepted: if acceptance would exceed the cap the request is
// left pending for manual resolution and the caller gets Unavailable.
func (s *ScrimService) Respond(requestID, callerID uint, accept bool) (*ScrimRequest, error) {
	req, err := s.repo.GetRequestByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperr.NotFound("scrim request %d", requestID)
	}
	if _, err := s.leaderOf(req.TargetTeamID, callerID, "respond to scrim requests"); err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, apperr.InvalidState("scrim request %d is not pending", requestID)
	}

	if !accept {
		req.Status = StatusRejected
		if err := s.repo.UpdateRequest(req); err != nil {
			return nil, err
		}
		return req, nil
	}

	day, err := ParseDate(req.Date)
	if err != nil {
		return nil, apperr.InvalidArgument("stored date %q is malformed", req.Date)
	}
	err = s.lockTeam(req.TargetTeamID, func(repo ScrimRepository) error {
		current, err := repo.GetRequestByID(requestID)
		if err != nil {
			return err
		}
		if current == nil {
			return apperr.NotFound("scrim request %d", requestID)
		}
		if current.Status != StatusPending {
			return apperr.InvalidState("scrim request %d is not pending", requestID)
		}
		// Accepted requests alone must stay within the cap; a racing accept
		// may have consumed the remaining capacity since this request was
		// filed. The request stays pending rather than being auto-rejected.
		available, err := availableOn(repo, req.TargetTeamID, day, []RequestStatus{StatusAccepted})
		if err != nil {
			return err
		}
		if !available {
			return apperr.Unavailable("daily scrim capacity for %s is already fully accepted", req.Date)
		}
		current.Status = StatusAccepted
		if err := repo.UpdateRequest(current); err != nil {
			return err
		}
		*req = *current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// Complete moves an accepted request to completed and applies the win/loss
// deltas to both rosters in the same transaction. Either team's leader may
// report the result.
func (s *ScrimService) Complete(requestID, callerID, winnerTeamID uint, score string) (*ScrimRequest, error) {
	req, err := s.repo.GetRequestByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperr.NotFound("scrim request %d", requestID)
	}
	if req.Status != StatusAccepted {
		return nil, apperr.InvalidState("scrim request %d is not accepted", requestID)
	}
	if winnerTeamID != req.RequestingTeamID && winnerTeamID != req.TargetTeamID {
		return nil, apperr.InvalidArgument("winner %d did not play in this scrim", winnerTeamID)
	}
	if len(score) > 16 {
		return nil, apperr.InvalidArgument("score too long")
	}

	requesting, err := s.getTeam(req.RequestingTeamID)
	if err != nil {
		return nil, err
	}
	target, err := s.getTeam(req.TargetTeamID)
	if err != nil {
		return nil, err
	}
	if callerID != requesting.LeaderID && callerID != target.LeaderID {
		return nil, apperr.Unauthorized("only a participating team's leader can report results")
	}

	loserTeamID := req.RequestingTeamID
	if winnerTeamID == req.RequestingTeamID {
		loserTeamID = req.TargetTeamID
	}

	err = s.lockTeam(req.TargetTeamID, func(repo ScrimRepository) error {
		current, err := repo.GetRequestByID(requestID)
		if err != nil {
			return err
		}
		if current == nil {
			return apperr.NotFound("scrim request %d", requestID)
		}
		if current.Status != StatusAccepted {
			return apperr.InvalidState("scrim request %d is not accepted", requestID)
		}
		current.Status = StatusCompleted
		current.WinnerTeamID = &winnerTeamID
		current.Score = score
		if err := repo.UpdateRequest(current); err != nil {
			return err
		}
		if err := repo.IncrementTeamRecords(winnerTeamID, loserTeamID); err != nil {
			return err
		}
		*req = *current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// DeleteRequest archives a terminal request. Requesting team's leader only.
func (s *ScrimService) DeleteRequest(requestID, callerID uint) error {
	req, err := s.repo.GetRequestByID(requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return apperr.NotFound("scrim request %d", requestID)
	}
	if _, err := s.leaderOf(req.RequestingTeamID, callerID, "delete scrim requests"); err != nil {
		return err
	}
	if !req.Terminal() {
		return apperr.InvalidState("scrim request %d is still active", requestID)
	}
	return s.repo.DeleteRequest(requestID)
}

// teamOf returns the team the caller sits on, for read-side listings.
func (s *ScrimService) teamOf(callerID uint) (*team.Team, error) {
	t, err := s.repo.GetTeamByPlayerID(callerID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apperr.NotFound("player %d is not on a team", callerID)
	}
	return t, nil
}

// SentRequests lists scrim requests filed by the caller's team.
func (s *ScrimService) SentRequests(callerID uint, status string, page, limit int) ([]ScrimRequest, int64, error) {
	t, err := s.teamOf(callerID)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByRequester(t.ID, status, page, limit)
}

// ReceivedRequests lists scrim requests targeting the caller's team.
func (s *ScrimService) ReceivedRequests(callerID uint, status string, page, limit int) ([]ScrimRequest, int64, error) {
	t, err := s.teamOf(callerID)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByTarget(t.ID, status, page, limit)
}

// PublicScrims lists public pending or accepted scrims from today onward.
func (s *ScrimService) PublicScrims(page, limit int) ([]ScrimRequest, int64, error) {
	return s.repo.ListPublicUpcoming(time.Now().Format(DateLayout), page, limit)
}

// Opponents lists candidate opponents for the caller's team on a date, each
// flagged with availability. No team is preferred over another; availability
// is evaluated independently per team.
func (s *ScrimService) Opponents(callerID uint, date string, page, limit int) ([]TeamAvailability, int64, error) {
	t, err := s.teamOf(callerID)
	if err != nil {
		return nil, 0, err
	}
	day, err := ParseDate(date)
	if err != nil {
		return nil, 0, apperr.InvalidArgument("date must be YYYY-MM-DD")
	}

	teams, total, err := s.repo.ListOpponents(t.ID, page, limit)
	if err != nil {
		return nil, 0, err
	}

	result := make([]TeamAvailability, 0, len(teams))
	for _, opponent := range teams {
		available, err := availableOn(s.repo, opponent.ID, day, []RequestStatus{StatusPending, StatusAccepted})
		if err != nil {
			return nil, 0, err
		}
		result = append(result, TeamAvailability{Team: opponent, Available: available})
	}
	return result, total, nil
}
