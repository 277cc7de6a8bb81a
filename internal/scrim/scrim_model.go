// scrim/model.go
package scrim

import (
	"time"

	"gorm.io/gorm"
)

type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusAccepted  RequestStatus = "accepted"
	StatusRejected  RequestStatus = "rejected"
	StatusCompleted RequestStatus = "completed"
)

const (
	// DefaultMaxDailyScrims applies when a team never configured a calendar.
	DefaultMaxDailyScrims = 3
	MinDailyScrims        = 1
	MaxDailyScrims        = 10

	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// ValidBestOf reports whether n is an allowed series length.
func ValidBestOf(n int) bool {
	return n == 1 || n == 3 || n == 5 || n == 7
}

// ParseDate parses a calendar date in DateLayout. Dates carry no timezone;
// all teams are assumed to share one.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// ParseClock parses a time of day in ClockLayout.
func ParseClock(s string) (time.Time, error) {
	return time.Parse(ClockLayout, s)
}

// ScrimSettings holds a team's daily booking cap. One row per team; absence
// means the permissive default applies.
type ScrimSettings struct {
	gorm.Model
	TeamID         uint `json:"team_id" gorm:"uniqueIndex;not null"`
	MaxDailyScrims int  `json:"max_daily_scrims" gorm:"default:3"`
}

// AvailabilityWindow is a recurring weekly interval during which a team
// accepts scrim requests. At most one window per (team, day); absence of a
// day means the team is unavailable that day once any calendar is configured.
type AvailabilityWindow struct {
	gorm.Model
	TeamID    uint   `json:"team_id" gorm:"uniqueIndex:idx_team_day;not null"`
	Day       int    `json:"day" gorm:"uniqueIndex:idx_team_day;not null"` // 0=Sunday .. 6=Saturday
	StartTime string `json:"start_time" gorm:"size:5;not null"`            // HH:MM
	EndTime   string `json:"end_time" gorm:"size:5;not null"`              // HH:MM, strictly after StartTime
}

// ScrimRequest is a practice-match proposal from one team's leader to
// another team. Status walks pending -> accepted -> completed, or
// pending -> rejected; terminal rows stay as history until the requesting
// leader archives them.
type ScrimRequest struct {
	gorm.Model
	RequestingTeamID uint          `json:"requesting_team_id" gorm:"index;not null"`
	TargetTeamID     uint          `json:"target_team_id" gorm:"index;not null"`
	Date             string        `json:"date" gorm:"size:10;index;not null"` // YYYY-MM-DD
	Time             string        `json:"time" gorm:"size:5;not null"`        // HH:MM
	BestOf           int           `json:"best_of" gorm:"not null"`
	IsPublic         bool          `json:"is_public" gorm:"default:false"`
	Status           RequestStatus `json:"status" gorm:"size:16;index;default:'pending'"`
	WinnerTeamID     *uint         `json:"winner_team_id,omitempty"`
	Score            string        `json:"score,omitempty" gorm:"size:16"` // e.g. "2-1", set at completion
}

// Terminal reports whether the request reached a final status.
func (r *ScrimRequest) Terminal() bool {
	return r.Status == StatusRejected || r.Status == StatusCompleted
}
