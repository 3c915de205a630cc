package storage

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Jaime-2616/ErronkaFinala/internal/game"
	"github.com/Jaime-2616/ErronkaFinala/internal/keys"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	ErrTeamExists   = errors.New("team already exists")
	ErrTeamNotFound = errors.New("team not found")
)

type sqliteRepository struct {
	db *gorm.DB
}

func NewSQLiteRepository(db *gorm.DB) Repository {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) CreateUser(username, passwordHash string) error {
	name := keys.Normalize(username)
	var existing game.User
	err := r.db.Where("username = ?", name).First(&existing).Error
	if err == nil {
		return ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.Create(&game.User{Username: name, PasswordHash: passwordHash}).Error
}

func (r *sqliteRepository) GetUserByName(username string) (*game.User, error) {
	var u game.User
	if err := r.db.Where("username = ?", keys.Normalize(username)).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *sqliteRepository) GetPoints(username string) (int, error) {
	u, err := r.GetUserByName(username)
	if err != nil {
		return 0, err
	}
	return u.Points, nil
}

func (r *sqliteRepository) PointsFor(usernames []string) ([]PlayerPoints, error) {
	out := make([]PlayerPoints, 0, len(usernames))
	for _, name := range usernames {
		name = keys.Normalize(name)
		var u game.User
		err := r.db.Where("username = ?", name).First(&u).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				out = append(out, PlayerPoints{Username: name, Points: 0})
				continue
			}
			return nil, err
		}
		out = append(out, PlayerPoints{Username: u.Username, Points: u.Points})
	}
	return out, nil
}

// GetTopPlayers returns the leaderboard ordered by points desc, username
// asc for stable ties.
func (r *sqliteRepository) GetTopPlayers(limit int) ([]PlayerPoints, error) {
	if limit <= 0 {
		limit = 10
	}
	var users []game.User
	if err := r.db.Model(&game.User{}).
		Order("points DESC").
		Order("username ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]PlayerPoints, len(users))
	for i, u := range users {
		out[i] = PlayerPoints{Username: u.Username, Points: u.Points}
	}
	return out, nil
}

// ApplyBattlePoints moves both totals in one transaction. The loser never
// drops below zero.
func (r *sqliteRepository) ApplyBattlePoints(winner string, winnerDelta int, loser string, loserDelta int) (int, int, error) {
	winner = keys.Normalize(winner)
	loser = keys.Normalize(loser)

	var winnerTotal, loserTotal int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"UPDATE users SET points = points + ? WHERE username = ?",
			winnerDelta, winner).Error; err != nil {
			return err
		}
		if err := tx.Exec(
			"UPDATE users SET points = MAX(0, points + ?) WHERE username = ?",
			loserDelta, loser).Error; err != nil {
			return err
		}

		var u game.User
		if err := tx.Where("username = ?", winner).First(&u).Error; err != nil {
			return err
		}
		winnerTotal = u.Points
		if err := tx.Where("username = ?", loser).First(&u).Error; err != nil {
			return err
		}
		loserTotal = u.Points
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, 0, ErrUserNotFound
	}
	return winnerTotal, loserTotal, err
}

func (r *sqliteRepository) InsertBattleRecord(rec *game.BattleRecord) error {
	rec.PlayerA = keys.Normalize(rec.PlayerA)
	rec.PlayerB = keys.Normalize(rec.PlayerB)
	rec.Winner = keys.Normalize(rec.Winner)
	rec.Loser = keys.Normalize(rec.Loser)
	return r.db.Create(rec).Error
}

func (r *sqliteRepository) GetPlayerStats(username string) (*PlayerStats, error) {
	name := keys.Normalize(username)

	stats := &PlayerStats{Username: name}

	// Most used pokemon across the player's saved teams.
	var pick PickCount
	err := r.db.Raw(`
		SELECT p.name AS name, COUNT(*) AS count
		FROM teams t
		JOIN users u ON u.id = t.user_id
		JOIN team_members tm ON tm.team_id = t.id
		JOIN pokemons p ON p.dex_id = tm.pokemon_id
		WHERE u.username = ?
		  AND t.deleted_at IS NULL AND tm.deleted_at IS NULL
		GROUP BY p.dex_id, p.name
		ORDER BY count DESC, p.name ASC
		LIMIT 1`, name).Scan(&pick).Error
	if err != nil {
		return nil, err
	}
	stats.MostUsedPokemon = pick.Name
	stats.MostUsedPokemonCount = pick.Count

	var agg struct {
		Total      int
		Wins       int
		Losses     int
		Surrenders int
		AvgAlive   float64
	}
	err = r.db.Raw(`
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END), 0) AS wins,
		       COALESCE(SUM(CASE WHEN winner <> ? AND end_reason <> 'SURRENDER' THEN 1 ELSE 0 END), 0) AS losses,
		       COALESCE(SUM(CASE WHEN winner <> ? AND end_reason = 'SURRENDER' THEN 1 ELSE 0 END), 0) AS surrenders,
		       COALESCE(AVG(CASE WHEN player_a = ? THEN player_a_alive
		                         WHEN player_b = ? THEN player_b_alive END), 0) AS avg_alive
		FROM battle_records
		WHERE (player_a = ? OR player_b = ?) AND deleted_at IS NULL`,
		name, name, name, name, name, name, name).Scan(&agg).Error
	if err != nil {
		return nil, err
	}

	stats.TotalBattles = agg.Total
	stats.Wins = agg.Wins
	stats.Losses = agg.Losses
	stats.Surrenders = agg.Surrenders
	stats.AvgAlive = agg.AvgAlive
	if agg.Total > 0 {
		stats.WinPct = float64(agg.Wins) * 100.0 / float64(agg.Total)
		stats.LossPct = float64(agg.Losses) * 100.0 / float64(agg.Total)
		stats.SurrenderPct = float64(agg.Surrenders) * 100.0 / float64(agg.Total)
	}
	return stats, nil
}

func (r *sqliteRepository) GetMostPickedPokemon() (PickCount, error) {
	var pick PickCount
	err := r.db.Raw(`
		SELECT p.name AS name, COUNT(*) AS count
		FROM team_members tm
		JOIN pokemons p ON p.dex_id = tm.pokemon_id
		WHERE tm.deleted_at IS NULL
		GROUP BY p.dex_id, p.name
		ORDER BY count DESC, p.name ASC
		LIMIT 1`).Scan(&pick).Error
	return pick, err
}

func (r *sqliteRepository) GetPokemons() ([]game.Pokemon, error) {
	var rows []game.Pokemon
	if err := r.db.Order("dex_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sqliteRepository) GetMovesByTypes(types []string) ([]game.Move, error) {
	var rows []game.Move
	q := r.db.Order("name ASC")
	if len(types) > 0 {
		q = q.Where("type IN ?", types)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sqliteRepository) GetTeamNames(username string) ([]string, error) {
	u, err := r.GetUserByName(username)
	if err != nil {
		return nil, err
	}
	var teams []game.Team
	if err := r.db.Where("user_id = ?", u.ID).Order("id ASC").Find(&teams).Error; err != nil {
		return nil, err
	}
	names := make([]string, len(teams))
	for i, t := range teams {
		names[i] = t.Name
	}
	return names, nil
}

func (r *sqliteRepository) GetTeamDetail(teamName string) ([]TeamPokemonView, error) {
	var team game.Team
	err := r.db.Preload("Members.Moves").Where("name = ?", teamName).First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	out := make([]TeamPokemonView, 0, len(team.Members))
	for _, m := range team.Members {
		var p game.Pokemon
		if err := r.db.Where("dex_id = ?", m.PokemonID).First(&p).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return nil, err
		}

		view := TeamPokemonView{
			DexID:     p.DexID,
			Name:      p.Name,
			Type1:     p.Type1,
			Type2:     p.Type2,
			HP:        p.HP,
			Attack:    p.Attack,
			Defense:   p.Defense,
			SpAttack:  p.SpAttack,
			SpDefense: p.SpDefense,
			Speed:     p.Speed,
			ImageURL:  p.ImageURL,
		}
		for _, mm := range m.Moves {
			var mv game.Move
			if err := r.db.First(&mv, mm.MoveID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return nil, err
			}
			view.Moves = append(view.Moves, TeamMoveView{
				ID:       mv.ID,
				Slot:     mm.Slot,
				Name:     mv.Name,
				Type:     mv.Type,
				Category: mv.Category,
				Power:    mv.Power,
				Accuracy: mv.Accuracy,
			})
		}
		out = append(out, view)
	}
	return out, nil
}

func (r *sqliteRepository) CreateTeam(username, teamName string, dexIDs []int) error {
	u, err := r.GetUserByName(username)
	if err != nil {
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing game.Team
		err := tx.Where("user_id = ? AND name = ?", u.ID, teamName).First(&existing).Error
		if err == nil {
			return ErrTeamExists
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		team := game.Team{UserID: u.ID, Name: teamName}
		for i, dex := range dexIDs {
			team.Members = append(team.Members, game.TeamMember{Slot: i + 1, PokemonID: dex})
		}
		return tx.Create(&team).Error
	})
}

func (r *sqliteRepository) DeleteTeam(username, teamName string) error {
	u, err := r.GetUserByName(username)
	if err != nil {
		return err
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var team game.Team
		err := tx.Where("user_id = ? AND name = ?", u.ID, teamName).First(&team).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeamNotFound
			}
			return err
		}

		var memberIDs []uint
		if err := tx.Model(&game.TeamMember{}).Where("team_id = ?", team.ID).
			Pluck("id", &memberIDs).Error; err != nil {
			return err
		}
		// Hard deletes: soft-deleted rows would still occupy the unique
		// slot indexes and block a later team with the same layout.
		if len(memberIDs) > 0 {
			if err := tx.Unscoped().Where("team_member_id IN ?", memberIDs).
				Delete(&game.TeamMemberMove{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Unscoped().Where("team_id = ?", team.ID).Delete(&game.TeamMember{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&team).Error
	})
}

func (r *sqliteRepository) SaveTeamMoves(teamName string, assignments []MoveAssignment) error {
	var team game.Team
	err := r.db.Preload("Members").Where("name = ?", teamName).First(&team).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return err
	}

	memberByDex := make(map[int]uint, len(team.Members))
	for _, m := range team.Members {
		memberByDex[m.PokemonID] = m.ID
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, a := range assignments {
			memberID, ok := memberByDex[a.DexID]
			if !ok {
				continue
			}
			if err := tx.Unscoped().Where("team_member_id = ?", memberID).
				Delete(&game.TeamMemberMove{}).Error; err != nil {
				return err
			}
			for slot, moveID := range a.MoveSlots {
				if moveID == 0 {
					continue
				}
				row := game.TeamMemberMove{TeamMemberID: memberID, Slot: slot + 1, MoveID: moveID}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
