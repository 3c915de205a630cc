package client

import (
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/Jaime-2616/ErronkaFinala/internal/constants"
	"github.com/Jaime-2616/ErronkaFinala/internal/game"
	"github.com/Jaime-2616/ErronkaFinala/internal/storage"
)

// Catalog HP is scaled up for battle so matches last several turns.
const battleHPScale = 2.5

var ErrEmptyTeam = errors.New("team has no members")

// LoadTeam fetches a team by name and builds its battle creatures.
func (c *Client) LoadTeam(teamName string) ([]*game.Creature, error) {
	payload, err := c.Do(constants.ActionGetTeam, teamName)
	if err != nil {
		return nil, err
	}
	return BuildCreatures([]byte(payload))
}

// BuildCreatures converts a team detail payload into engine-ready
// creatures: scaled HP, trimmed types and moves placed at their slots.
func BuildCreatures(payload []byte) ([]*game.Creature, error) {
	var views []storage.TeamPokemonView
	if err := json.Unmarshal(payload, &views); err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrEmptyTeam
	}

	team := make([]*game.Creature, 0, len(views))
	for _, v := range views {
		hp := int(math.Round(float64(v.HP) * battleHPScale))
		cr := &game.Creature{
			DexID:     v.DexID,
			Name:      v.Name,
			MaxHP:     hp,
			CurrentHP: hp,
			Attack:    v.Attack,
			Defense:   v.Defense,
			SpAttack:  v.SpAttack,
			SpDefense: v.SpDefense,
			Speed:     v.Speed,
		}
		if t := strings.TrimSpace(v.Type1); t != "" {
			cr.Types = append(cr.Types, t)
		}
		if t := strings.TrimSpace(v.Type2); t != "" {
			cr.Types = append(cr.Types, t)
		}
		for _, m := range v.Moves {
			if m.Slot < 1 || m.Slot > 4 {
				continue
			}
			cr.Moves[m.Slot-1] = game.MoveSlot{
				Name:     m.Name,
				Type:     strings.TrimSpace(m.Type),
				Category: game.ParseCategory(m.Category),
				Power:    m.Power,
			}
		}
		team = append(team, cr)
	}
	return team, nil
}
