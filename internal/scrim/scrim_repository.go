package scrim

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rafiakbrr/scrimhub/internal/team"
)

// ScrimRepository defines the interface for calendar and scrim request data
// operations. WithTeamLock serializes every admission decision against a
// target team: the capacity count and the subsequent insert (or status
// change) run under a row lock on the team, so concurrent requests cannot
// jointly exceed the daily cap.
type ScrimRepository interface {
	WithTeamLock(teamID uint, txFunc func(ScrimRepository) error) error

	// Settings and windows
	GetSettings(teamID uint) (*ScrimSettings, error)
	UpsertSettings(settings *ScrimSettings) error
	GetWindow(teamID uint, day int) (*AvailabilityWindow, error)
	GetWindows(teamID uint) ([]AvailabilityWindow, error)
	UpsertWindow(window *AvailabilityWindow) error
	DeleteWindow(teamID uint, day int) error

	// Requests
	CreateRequest(req *ScrimRequest) error
	GetRequestByID(id uint) (*ScrimRequest, error)
	UpdateRequest(req *ScrimRequest) error
	DeleteRequest(id uint) error
	CountRequestsForDate(targetTeamID uint, date string, statuses []RequestStatus) (int64, error)
	ListByRequester(teamID uint, status string, page, limit int) ([]ScrimRequest, int64, error)
	ListByTarget(teamID uint, status string, page, limit int) ([]ScrimRequest, int64, error)
	ListPublicUpcoming(fromDate string, page, limit int) ([]ScrimRequest, int64, error)

	// Team access needed by the negotiation rules
	GetTeam(id uint) (*team.Team, error)
	GetTeamByPlayerID(playerID uint) (*team.Team, error)
	ListOpponents(excludeTeamID uint, page, limit int) ([]team.Team, int64, error)
	IncrementTeamRecords(winnerID, loserID uint) error
}

type scrimRepository struct {
	db *gorm.DB
}

// NewScrimRepository creates a new instance of ScrimRepository
func NewScrimRepository(db *gorm.DB) ScrimRepository {
	return &scrimRepository{db: db}
}

func (r *scrimRepository) WithTeamLock(teamID uint, txFunc func(ScrimRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var t team.Team
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, teamID).Error; err != nil {
			return err
		}
		return txFunc(&scrimRepository{db: tx})
	})
}

// --- Settings and Windows ---

func (r *scrimRepository) GetSettings(teamID uint) (*ScrimSettings, error) {
	var settings ScrimSettings
	if err := r.db.Where("team_id = ?", teamID).First(&settings).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *scrimRepository) UpsertSettings(settings *ScrimSettings) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"max_daily_scrims", "updated_at"}),
	}).Create(settings).Error
}

func (r *scrimRepository) GetWindow(teamID uint, day int) (*AvailabilityWindow, error) {
	var window AvailabilityWindow
	if err := r.db.Where("team_id = ? AND day = ?", teamID, day).First(&window).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &window, nil
}

func (r *scrimRepository) GetWindows(teamID uint) ([]AvailabilityWindow, error) {
	var windows []AvailabilityWindow
	if err := r.db.Where("team_id = ?", teamID).Order("day asc").Find(&windows).Error; err != nil {
		return nil, err
	}
	return windows, nil
}

func (r *scrimRepository) UpsertWindow(window *AvailabilityWindow) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "team_id"}, {Name: "day"}},
		DoUpdates: clause.AssignmentColumns([]string{"start_time", "end_time", "updated_at"}),
	}).Create(window).Error
}

func (r *scrimRepository) DeleteWindow(teamID uint, day int) error {
	// Hard delete so the (team_id, day) unique index does not block
	// re-adding the window later.
	return r.db.Unscoped().Where("team_id = ? AND day = ?", teamID, day).Delete(&AvailabilityWindow{}).Error
}

// --- Requests ---

func (r *scrimRepository) CreateRequest(req *ScrimRequest) error {
	return r.db.Create(req).Error
}

func (r *scrimRepository) GetRequestByID(id uint) (*ScrimRequest, error) {
	var req ScrimRequest
	if err := r.db.First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *scrimRepository) UpdateRequest(req *ScrimRequest) error {
	return r.db.Save(req).Error
}

func (r *scrimRepository) DeleteRequest(id uint) error {
	return r.db.Unscoped().Delete(&ScrimRequest{}, id).Error
}

func (r *scrimRepository) CountRequestsForDate(targetTeamID uint, date string, statuses []RequestStatus) (int64, error) {
	var count int64
	err := r.db.Model(&ScrimRequest{}).
		Where("target_team_id = ? AND date = ? AND status IN ?", targetTeamID, date, statuses).
		Count(&count).Error
	return count, err
}

func (r *scrimRepository) ListByRequester(teamID uint, status string, page, limit int) ([]ScrimRequest, int64, error) {
	return r.listRequests(r.db.Model(&ScrimRequest{}).Where("requesting_team_id = ?", teamID), status, page, limit)
}

func (r *scrimRepository) ListByTarget(teamID uint, status string, page, limit int) ([]ScrimRequest, int64, error) {
	return r.listRequests(r.db.Model(&ScrimRequest{}).Where("target_team_id = ?", teamID), status, page, limit)
}

func (r *scrimRepository) ListPublicUpcoming(fromDate string, page, limit int) ([]ScrimRequest, int64, error) {
	query := r.db.Model(&ScrimRequest{}).
		Where("is_public = ? AND date >= ? AND status IN ?", true, fromDate,
			[]RequestStatus{StatusPending, StatusAccepted})
	return r.listRequests(query, "", page, limit)
}

func (r *scrimRepository) listRequests(query *gorm.DB, status string, page, limit int) ([]ScrimRequest, int64, error) {
	var requests []ScrimRequest
	var total int64
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("date asc, time asc").Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// --- Team access ---

func (r *scrimRepository) GetTeam(id uint) (*team.Team, error) {
	var t team.Team
	if err := r.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *scrimRepository) GetTeamByPlayerID(playerID uint) (*team.Team, error) {
	var t team.Team
	err := r.db.Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.player_id = ? AND team_members.deleted_at IS NULL", playerID).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *scrimRepository) ListOpponents(excludeTeamID uint, page, limit int) ([]team.Team, int64, error) {
	var teams []team.Team
	var total int64
	query := r.db.Model(&team.Team{}).Where("id <> ?", excludeTeamID)
	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("wins desc, created_at desc").Find(&teams).Error; err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

func (r *scrimRepository) IncrementTeamRecords(winnerID, loserID uint) error {
	if err := r.db.Model(&team.Team{}).Where("id = ?", winnerID).
		UpdateColumn("wins", gorm.Expr("wins + ?", 1)).Error; err != nil {
		return err
	}
	return r.db.Model(&team.Team{}).Where("id = ?", loserID).
		UpdateColumn("losses", gorm.Expr("losses + ?", 1)).Error
}
