// player/model.go
package player

import (
	"gorm.io/gorm"
)

// GameRole is an in-game role a player mains.
type GameRole string

const (
	RoleTank     GameRole = "Tank"
	RoleFighter  GameRole = "Fighter"
	RoleAssassin GameRole = "Assassin"
	RoleMage     GameRole = "Mage"
	RoleMarksman GameRole = "Marksman"
	RoleSupport  GameRole = "Support"
)

// GameRoles lists every valid role, in display order.
var GameRoles = []GameRole{RoleTank, RoleFighter, RoleAssassin, RoleMage, RoleMarksman, RoleSupport}

// Rank is an ordered in-game skill tier.
type Rank string

const (
	RankWarrior          Rank = "Warrior"
	RankElite            Rank = "Elite"
	RankMaster           Rank = "Master"
	RankGrandmaster      Rank = "Grandmaster"
	RankEpic             Rank = "Epic"
	RankLegend           Rank = "Legend"
	RankMythic           Rank = "Mythic"
	RankMythicalGlory    Rank = "Mythical Glory"
	RankMythicalImmortal Rank = "Mythical Immortal"
)

// Ranks lists every valid rank from lowest to highest.
var Ranks = []Rank{
	RankWarrior, RankElite, RankMaster, RankGrandmaster, RankEpic,
	RankLegend, RankMythic, RankMythicalGlory, RankMythicalImmortal,
}

// MaxFavoriteHeroes caps the favorite hero list on a profile.
const MaxFavoriteHeroes = 3

// ValidRole reports whether s names a known game role.
func ValidRole(s string) bool {
	for _, r := range GameRoles {
		if string(r) == s {
			return true
		}
	}
	return false
}

// ValidRank reports whether s names a known rank tier.
func ValidRank(s string) bool {
	for _, r := range Ranks {
		if string(r) == s {
			return true
		}
	}
	return false
}

// RankWeight returns the ordinal position of a rank, 0 for the lowest tier.
// Unknown ranks sort below Warrior.
func RankWeight(s string) int {
	for i, r := range Ranks {
		if string(r) == s {
			return i
		}
	}
	return -1
}

// Player is a user profile. The row id matches the player identifier issued
// by the external identity provider; the row is created on first profile
// setup, not at sign-up.
type Player struct {
	gorm.Model
	Username       string `json:"username" gorm:"size:32;uniqueIndex;not null"`
	GameID         string `json:"game_id" gorm:"size:16;index"`
	Role           string `json:"role" gorm:"size:16"`
	Rank           string `json:"rank" gorm:"size:24"`
	FavoriteHeroes string `json:"favorite_heroes" gorm:"type:json"` // JSON array, at most MaxFavoriteHeroes entries
	Bio            string `json:"bio" gorm:"type:text"`
	AvatarURL      string `json:"avatar_url"`
	IsTeamLeader   bool   `json:"is_team_leader" gorm:"default:false"`
	TeamID         *uint  `json:"team_id,omitempty" gorm:"index"`
}
