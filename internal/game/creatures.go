package game

// In-battle representations. These are built from catalog rows when a
// battle starts and live only in memory on each client.

// MoveCategory distinguishes which attack and defense stats a move uses.
type MoveCategory int

const (
	CategoryPhysical MoveCategory = iota
	CategorySpecial
)

// ParseCategory maps the dataset's category labels to a MoveCategory. The
// seeded movedex uses the Japanese labels 物理 (physical) and 特殊
// (special); anything unrecognized counts as physical, matching how the
// dataset treats status-like entries.
func ParseCategory(label string) MoveCategory {
	switch label {
	case "特殊", "special", "Special":
		return CategorySpecial
	default:
		return CategoryPhysical
	}
}

// MoveSlot is one of the up-to-four moves a creature brings into battle.
// An empty slot has Name == "" and deals no damage when selected.
type MoveSlot struct {
	Name     string
	Type     string
	Category MoveCategory
	Power    int
}

// Creature is a battle-ready instance of a catalog pokemon. CurrentHP is
// mutated as the battle progresses; MaxHP is fixed at battle start.
type Creature struct {
	DexID     int
	Name      string
	Types     []string
	MaxHP     int
	CurrentHP int
	Attack    int
	Defense   int
	SpAttack  int
	SpDefense int
	Speed     int
	Moves     [4]MoveSlot
}

// Fainted reports whether the creature is out of the battle.
func (c *Creature) Fainted() bool { return c.CurrentHP <= 0 }

// MoveAt returns the move in slot (1..4) and whether the slot is valid and
// filled.
func (c *Creature) MoveAt(slot int) (MoveSlot, bool) {
	if slot < 1 || slot > 4 {
		return MoveSlot{}, false
	}
	m := c.Moves[slot-1]
	if m.Name == "" {
		return MoveSlot{}, false
	}
	return m, true
}
