// team/model.go
package team

import (
	"time"

	"gorm.io/gorm"
)

const (
	ApplicationPending  = "pending"
	ApplicationAccepted = "accepted"
	ApplicationDeclined = "declined"
)

// Team is a roster: a named squad with exactly one leader. The leader is
// always present in the member set. Win/loss counters accumulate from
// completed scrims.
type Team struct {
	gorm.Model
	Name     string `json:"name" gorm:"size:100;not null"`
	Tag      string `json:"tag" gorm:"size:8;uniqueIndex;not null"`
	LeaderID uint   `json:"leader_id" gorm:"index;not null"`
	Wins     int    `json:"wins" gorm:"default:0"`
	Losses   int    `json:"losses" gorm:"default:0"`
}

// TeamMember links a player to a roster. A player sits on at most one roster
// at a time; membership rows are removed outright on departure so the unique
// index stays authoritative.
type TeamMember struct {
	gorm.Model
	TeamID   uint      `json:"team_id" gorm:"uniqueIndex:idx_team_member;not null"`
	PlayerID uint      `json:"player_id" gorm:"uniqueIndex:idx_team_member;index;not null"`
	JoinedAt time.Time `json:"joined_at"`
}

// Application is a player's join request against a roster. At most one
// pending application may exist per (team, player) pair. Resolved
// applications are deleted, not kept as history.
type Application struct {
	gorm.Model
	TeamID   uint   `json:"team_id" gorm:"index;not null"`
	PlayerID uint   `json:"player_id" gorm:"index;not null"`
	Message  string `json:"message" gorm:"size:500"`
	Status   string `json:"status" gorm:"size:16;default:'pending'"`
}
