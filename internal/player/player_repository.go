package player

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlayerRepository defines the interface for player profile data operations
type PlayerRepository interface {
	UpsertPlayer(p *Player) error
	GetPlayerByID(id uint) (*Player, error)
	GetPlayerByUsername(username string) (*Player, error)
	ListPlayers(page, limit int) ([]Player, int64, error)
}

type playerRepository struct {
	db *gorm.DB
}

// NewPlayerRepository creates a new instance of PlayerRepository
func NewPlayerRepository(db *gorm.DB) PlayerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) UpsertPlayer(p *Player) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"username", "game_id", "role", "rank", "favorite_heroes", "bio", "avatar_url", "updated_at",
		}),
	}).Create(p).Error
}

func (r *playerRepository) GetPlayerByID(id uint) (*Player, error) {
	var p Player
	if err := r.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *playerRepository) GetPlayerByUsername(username string) (*Player, error) {
	var p Player
	if err := r.db.Where("username = ?", username).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// rankOrderExpr builds a CASE expression so players sort by rank tier in SQL.
func rankOrderExpr() string {
	var b strings.Builder
	b.WriteString("CASE players.rank")
	for i, rank := range Ranks {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", string(rank), i)
	}
	b.WriteString(" ELSE -1 END DESC")
	return b.String()
}

func (r *playerRepository) ListPlayers(page, limit int) ([]Player, int64, error) {
	var players []Player
	var total int64

	query := r.db.Model(&Player{})
	query.Count(&total)

	// Ties within a rank tier break on the player's team win rate, then name.
	// Joined by table name; the teams entity lives in another package.
	offset := (page - 1) * limit
	if err := query.
		Select("players.*").
		Joins("LEFT JOIN teams ON teams.id = players.team_id").
		Offset(offset).Limit(limit).
		Order(rankOrderExpr()).
		Order("COALESCE(teams.wins::float / NULLIF(teams.wins + teams.losses, 0), 0) DESC").
		Order("username asc").
		Find(&players).Error; err != nil {
		return nil, 0, err
	}
	return players, total, nil
}
