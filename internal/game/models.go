package game

import (
	"gorm.io/gorm"
)

// User stores a registered player account and their accumulated points.
// Usernames are stored lower-cased so lookups are case-insensitive.
type User struct {
	gorm.Model
	Username     string `json:"username" gorm:"uniqueIndex;size:32"`
	PasswordHash string `json:"-"`
	Points       int    `json:"points"`
}

func (User) TableName() string { return "users" }

// Pokemon is a catalog entry seeded from pokedex.json. DexID is the
// national dex number and is what teams reference; it is independent of
// the GORM primary key.
type Pokemon struct {
	gorm.Model
	DexID     int    `json:"dex_id" gorm:"uniqueIndex"`
	Name      string `json:"name" gorm:"index"`
	Type1     string `json:"type1"`
	Type2     string `json:"type2"`
	HP        int    `json:"hp"`
	Attack    int    `json:"attack"`
	Defense   int    `json:"defense"`
	SpAttack  int    `json:"sp_attack"`
	SpDefense int    `json:"sp_defense"`
	Speed     int    `json:"speed"`
	ImageURL  string `json:"image_url"`
}

func (Pokemon) TableName() string { return "pokemons" }

// Move is a catalog entry seeded from moves.json. Category holds the
// original dataset labels (see MoveCategory).
type Move struct {
	gorm.Model
	Name     string `json:"name" gorm:"index"`
	Type     string `json:"type" gorm:"index"`
	Category string `json:"category"`
	Power    int    `json:"power"`
	Accuracy int    `json:"accuracy"`
}

func (Move) TableName() string { return "moves" }

// Team is a named roster owned by a user. A battle-ready team carries six
// slots, each with up to four moves.
type Team struct {
	gorm.Model
	UserID  uint         `json:"-" gorm:"index:idx_team_owner_name,unique"`
	Name    string       `json:"name" gorm:"index:idx_team_owner_name,unique;size:32"`
	Members []TeamMember `json:"members" gorm:"constraint:OnDelete:CASCADE"`
}

func (Team) TableName() string { return "teams" }

// TeamMember places one catalog pokemon in a numbered team slot.
type TeamMember struct {
	gorm.Model
	TeamID    uint             `json:"-" gorm:"index:idx_member_slot,unique"`
	Slot      int              `json:"slot" gorm:"index:idx_member_slot,unique"`
	PokemonID int              `json:"pokemon_id"`
	Moves     []TeamMemberMove `json:"moves" gorm:"constraint:OnDelete:CASCADE"`
}

func (TeamMember) TableName() string { return "team_members" }

// TeamMemberMove assigns a catalog move to one of the four move slots of a
// team member. Slot runs 1..4.
type TeamMemberMove struct {
	gorm.Model
	TeamMemberID uint `json:"-" gorm:"index:idx_member_move_slot,unique"`
	Slot         int  `json:"slot" gorm:"index:idx_member_move_slot,unique"`
	MoveID       uint `json:"move_id"`
}

func (TeamMemberMove) TableName() string { return "team_member_moves" }

// BattleRecord is the history row written when a match settles, either
// normally or by surrender.
type BattleRecord struct {
	gorm.Model
	PlayerA      string `json:"player_a" gorm:"index"`
	PlayerB      string `json:"player_b" gorm:"index"`
	Winner       string `json:"winner" gorm:"index"`
	Loser        string `json:"loser"`
	PlayerAAlive int    `json:"player_a_alive"`
	PlayerBAlive int    `json:"player_b_alive"`
	WinnerPoints int    `json:"winner_points"`
	LoserPoints  int    `json:"loser_points"`
	EndReason    string `json:"end_reason"`
}

func (BattleRecord) TableName() string { return "battle_records" }
