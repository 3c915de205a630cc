package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Jaime-2616/ErronkaFinala/internal/game"
	"github.com/Jaime-2616/ErronkaFinala/internal/logging"
)

// pokedexEntry mirrors one object of pokedex.json.
type pokedexEntry struct {
	DexID     int    `json:"dex_id"`
	Name      string `json:"name"`
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

// moveEntry mirrors one object of moves.json.
type moveEntry struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category"`
	Power    int    `json:"power"`
	Accuracy int    `json:"accuracy"`
}

// OpenAndMigrate opens the sqlite database, migrates the schema and seeds
// the pokemon and move catalogs from the given JSON files. Seeding only
// happens on an empty catalog so local data survives restarts.
func OpenAndMigrate(dataSourceName, pokedexPath, movesPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&game.User{},
		&game.Pokemon{},
		&game.Move{},
		&game.Team{},
		&game.TeamMember{},
		&game.TeamMemberMove{},
		&game.BattleRecord{},
	)
	if err != nil {
		return nil, err
	}

	if err := seedPokedex(db, pokedexPath); err != nil {
		return nil, err
	}
	if err := seedMoves(db, movesPath); err != nil {
		return nil, err
	}
	return db, nil
}

func seedPokedex(db *gorm.DB, path string) error {
	var count int64
	db.Model(&game.Pokemon{}).Count(&count)
	if count > 0 {
		return nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read pokedex file %s: %w", path, err)
	}
	var entries []pokedexEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return fmt.Errorf("failed to parse pokedex file %s: %w", path, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("pokedex file %s is empty", path)
	}

	rows := make([]game.Pokemon, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" || e.DexID <= 0 {
			return fmt.Errorf("pokedex file %s: entry missing name or dex_id", path)
		}
		rows = append(rows, game.Pokemon{
			DexID:     e.DexID,
			Name:      e.Name,
			Type1:     e.Type1,
			Type2:     e.Type2,
			HP:        e.HP,
			Attack:    e.Attack,
			Defense:   e.Defense,
			SpAttack:  e.SpAttack,
			SpDefense: e.SpDefense,
			Speed:     e.Speed,
			ImageURL:  e.ImageURL,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return err
	}
	logging.Info("pokedex seeded", logging.Fields{"count": len(rows)})
	return nil
}

func seedMoves(db *gorm.DB, path string) error {
	var count int64
	db.Model(&game.Move{}).Count(&count)
	if count > 0 {
		return nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read moves file %s: %w", path, err)
	}
	var entries []moveEntry
	if err := json.Unmarshal(b, &entries); err != nil {
		return fmt.Errorf("failed to parse moves file %s: %w", path, err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("moves file %s is empty", path)
	}

	rows := make([]game.Move, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return fmt.Errorf("moves file %s: entry missing name", path)
		}
		rows = append(rows, game.Move{
			Name:     e.Name,
			Type:     e.Type,
			Category: e.Category,
			Power:    e.Power,
			Accuracy: e.Accuracy,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return err
	}
	logging.Info("movedex seeded", logging.Fields{"count": len(rows)})
	return nil
}
