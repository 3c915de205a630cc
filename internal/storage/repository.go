package storage

import (
	"github.com/Jaime-2616/ErronkaFinala/internal/game"
)

// PlayerPoints pairs a username with its current point total.
type PlayerPoints struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
}

// PickCount reports how often a pokemon appears across saved teams.
type PickCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// PlayerStats aggregates a player's battle history.
type PlayerStats struct {
	Username             string  `json:"username"`
	MostUsedPokemon      string  `json:"most_used_pokemon"`
	MostUsedPokemonCount int     `json:"most_used_pokemon_count"`
	TotalBattles         int     `json:"total_battles"`
	Wins                 int     `json:"wins"`
	Losses               int     `json:"losses"`
	Surrenders           int     `json:"surrenders"`
	WinPct               float64 `json:"win_pct"`
	LossPct              float64 `json:"loss_pct"`
	SurrenderPct         float64 `json:"surrender_pct"`
	AvgAlive             float64 `json:"avg_alive"`
}

// TeamMoveView is one assigned move inside a team detail payload.
type TeamMoveView struct {
	ID       uint   `json:"id"`
	Slot     int    `json:"slot"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Power    int    `json:"power"`
	Accuracy int    `json:"accuracy"`
}

// TeamPokemonView is one slot of a battle-ready team, catalog stats plus
// the assigned moves.
type TeamPokemonView struct {
	DexID     int            `json:"dex_id"`
	Name      string         `json:"name"`
	Type1     string         `json:"type1"`
	Type2     string         `json:"type2"`
	HP        int            `json:"hp"`
	Attack    int            `json:"attack"`
	Defense   int            `json:"defense"`
	SpAttack  int            `json:"sp_attack"`
	SpDefense int            `json:"sp_defense"`
	Speed     int            `json:"speed"`
	ImageURL  string         `json:"image_url"`
	Moves     []TeamMoveView `json:"moves"`
}

// MoveAssignment binds up to four move IDs to one team member, identified
// by the pokemon's dex number. A zero ID leaves the slot empty.
type MoveAssignment struct {
	DexID     int     `json:"dex_id"`
	MoveSlots [4]uint `json:"move_slots"`
}

type Repository interface {
	// Accounts and points
	CreateUser(username, passwordHash string) error
	GetUserByName(username string) (*game.User, error)
	GetPoints(username string) (int, error)
	PointsFor(usernames []string) ([]PlayerPoints, error)
	GetTopPlayers(limit int) ([]PlayerPoints, error)
	ApplyBattlePoints(winner string, winnerDelta int, loser string, loserDelta int) (winnerTotal, loserTotal int, err error)

	// Battle history
	InsertBattleRecord(rec *game.BattleRecord) error
	GetPlayerStats(username string) (*PlayerStats, error)
	GetMostPickedPokemon() (PickCount, error)

	// Catalog
	GetPokemons() ([]game.Pokemon, error)
	GetMovesByTypes(types []string) ([]game.Move, error)

	// Teams
	GetTeamNames(username string) ([]string, error)
	GetTeamDetail(teamName string) ([]TeamPokemonView, error)
	CreateTeam(username, teamName string, dexIDs []int) error
	DeleteTeam(username, teamName string) error
	SaveTeamMoves(teamName string, assignments []MoveAssignment) error
}
