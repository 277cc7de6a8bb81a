package team

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rafiakbrr/scrimhub/internal/player"
)

// TeamRepository defines the interface for roster and application data
// operations. WithTeamLock serializes check-then-act sequences per team: the
// callback runs inside a transaction that holds a row lock on the team, so
// two concurrent admission decisions against the same team cannot interleave.
type TeamRepository interface {
	WithTransaction(txFunc func(TeamRepository) error) error
	WithTeamLock(teamID uint, txFunc func(TeamRepository) error) error

	// Team operations
	CreateTeam(team *Team) error
	GetTeamByID(id uint) (*Team, error)
	GetTeamByTag(tag string) (*Team, error)
	GetTeamByPlayerID(playerID uint) (*Team, error)
	ListTeams(page, limit int, search string) ([]Team, int64, error)
	UpdateTeam(team *Team) error

	// Membership operations
	AddMember(member *TeamMember) error
	GetMember(teamID, playerID uint) (*TeamMember, error)
	ListMembers(teamID uint, page, limit int) ([]TeamMember, int64, error)
	RemoveMember(teamID, playerID uint) error
	IsPlayerOnAnyTeam(playerID uint) (bool, error)

	// Player back-reference. AssignPlayerToTeam is a conditional write: it
	// succeeds only while the player has no team, which closes the race of a
	// player being admitted into two rosters at once.
	AssignPlayerToTeam(playerID, teamID uint, leader bool) (bool, error)
	ClearPlayerTeam(playerID uint) error
	GetPlayer(playerID uint) (*player.Player, error)

	// Application operations
	CreateApplication(app *Application) error
	GetApplicationByID(id uint) (*Application, error)
	GetPendingApplication(teamID, playerID uint) (*Application, error)
	ListApplicationsByTeam(teamID uint, status string, page, limit int) ([]Application, int64, error)
	ListApplicationsByPlayer(playerID uint, status string, page, limit int) ([]Application, int64, error)
	DeleteApplication(id uint) error
}

type teamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new instance of TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &teamRepository{db: db}
}

func (r *teamRepository) WithTransaction(txFunc func(TeamRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return txFunc(&teamRepository{db: tx})
	})
}

func (r *teamRepository) WithTeamLock(teamID uint, txFunc func(TeamRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var t Team
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, teamID).Error; err != nil {
			return err
		}
		return txFunc(&teamRepository{db: tx})
	})
}

// --- Team Operations ---

func (r *teamRepository) CreateTeam(team *Team) error {
	return r.db.Create(team).Error
}

func (r *teamRepository) GetTeamByID(id uint) (*Team, error) {
	var team Team
	if err := r.db.First(&team, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) GetTeamByTag(tag string) (*Team, error) {
	var team Team
	if err := r.db.Where("tag = ?", tag).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) GetTeamByPlayerID(playerID uint) (*Team, error) {
	var team Team
	err := r.db.Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.player_id = ? AND team_members.deleted_at IS NULL", playerID).
		First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) ListTeams(page, limit int, search string) ([]Team, int64, error) {
	var teams []Team
	var total int64

	query := r.db.Model(&Team{})
	if search != "" {
		query = query.Where("name ILIKE ? OR tag ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("wins desc, created_at desc").Find(&teams).Error; err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

func (r *teamRepository) UpdateTeam(team *Team) error {
	return r.db.Save(team).Error
}

// --- Membership Operations ---

func (r *teamRepository) AddMember(member *TeamMember) error {
	return r.db.Create(member).Error
}

func (r *teamRepository) GetMember(teamID, playerID uint) (*TeamMember, error) {
	var member TeamMember
	if err := r.db.Where("team_id = ? AND player_id = ?", teamID, playerID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *teamRepository) ListMembers(teamID uint, page, limit int) ([]TeamMember, int64, error) {
	var members []TeamMember
	var total int64
	query := r.db.Model(&TeamMember{}).Where("team_id = ?", teamID)
	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("joined_at asc").Find(&members).Error; err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

func (r *teamRepository) RemoveMember(teamID, playerID uint) error {
	// Hard delete so the (team_id, player_id) unique index does not block a
	// later rejoin.
	return r.db.Unscoped().Where("team_id = ? AND player_id = ?", teamID, playerID).Delete(&TeamMember{}).Error
}

func (r *teamRepository) IsPlayerOnAnyTeam(playerID uint) (bool, error) {
	var count int64
	err := r.db.Model(&TeamMember{}).Where("player_id = ?", playerID).Count(&count).Error
	return count > 0, err
}

// --- Player back-reference ---

func (r *teamRepository) AssignPlayerToTeam(playerID, teamID uint, leader bool) (bool, error) {
	res := r.db.Model(&player.Player{}).
		Where("id = ? AND team_id IS NULL", playerID).
		Updates(map[string]interface{}{"team_id": teamID, "is_team_leader": leader})
	return res.RowsAffected > 0, res.Error
}

func (r *teamRepository) ClearPlayerTeam(playerID uint) error {
	return r.db.Model(&player.Player{}).
		Where("id = ?", playerID).
		Updates(map[string]interface{}{"team_id": nil, "is_team_leader": false}).Error
}

func (r *teamRepository) GetPlayer(playerID uint) (*player.Player, error) {
	var p player.Player
	if err := r.db.First(&p, playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// --- Application Operations ---

func (r *teamRepository) CreateApplication(app *Application) error {
	return r.db.Create(app).Error
}

func (r *teamRepository) GetApplicationByID(id uint) (*Application, error) {
	var app Application
	if err := r.db.First(&app, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *teamRepository) GetPendingApplication(teamID, playerID uint) (*Application, error) {
	var app Application
	err := r.db.Where("team_id = ? AND player_id = ? AND status = 'pending'", teamID, playerID).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *teamRepository) ListApplicationsByTeam(teamID uint, status string, page, limit int) ([]Application, int64, error) {
	var apps []Application
	var total int64
	query := r.db.Model(&Application{}).Where("team_id = ?", teamID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&apps).Error; err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *teamRepository) ListApplicationsByPlayer(playerID uint, status string, page, limit int) ([]Application, int64, error) {
	var apps []Application
	var total int64
	query := r.db.Model(&Application{}).Where("player_id = ?", playerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("created_at desc").Find(&apps).Error; err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *teamRepository) DeleteApplication(id uint) error {
	// Applications do not survive resolution; remove the row outright.
	return r.db.Unscoped().Delete(&Application{}, id).Error
}
