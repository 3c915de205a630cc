package battle

import (
	"math"
	"strings"

	"github.com/Jaime-2616/ErronkaFinala/internal/game"
)

// DefaultLevel is the level every creature fights at. The damage formula
// uses it as a flat scaling term.
const DefaultLevel = 50

// Engine resolves turns for one battle. Each side brings an ordered team;
// the creature at the lowest alive index is the active one. The engine is
// fully deterministic: both clients of a battle run the same inputs and
// must arrive at the same state.
type Engine struct {
	teamA []*game.Creature
	teamB []*game.Creature

	indexA int
	indexB int

	level int
}

// TurnAction records one attack (or skipped attack) inside a turn.
type TurnAction struct {
	SideA           bool
	Attacker        string
	MoveName        string
	Damage          int
	Defender        string
	DefenderHPAfter int
	DefenderFainted bool
}

// TurnResult is the outcome of one resolved turn.
type TurnResult struct {
	AFirst   bool
	Actions  []TurnAction
	Finished bool
}

// NewEngine builds an engine over the two teams. The slices are retained
// and mutated as damage lands.
func NewEngine(teamA, teamB []*game.Creature) *Engine {
	return &Engine{teamA: teamA, teamB: teamB, level: DefaultLevel}
}

// NewEngineAtLevel is NewEngine with a non-default battle level.
func NewEngineAtLevel(teamA, teamB []*game.Creature, level int) *Engine {
	if level <= 0 {
		level = DefaultLevel
	}
	return &Engine{teamA: teamA, teamB: teamB, level: level}
}

// ActiveA returns side A's current creature, or nil when the whole team
// has fainted.
func (e *Engine) ActiveA() *game.Creature {
	if e.indexA < len(e.teamA) {
		return e.teamA[e.indexA]
	}
	return nil
}

// ActiveB returns side B's current creature, or nil when the whole team
// has fainted.
func (e *Engine) ActiveB() *game.Creature {
	if e.indexB < len(e.teamB) {
		return e.teamB[e.indexB]
	}
	return nil
}

// Finished reports whether either side has no creatures left.
func (e *Engine) Finished() bool {
	e.advance()
	return e.ActiveA() == nil || e.ActiveB() == nil
}

// WinnerIsA reports which side won. Only meaningful once Finished.
func (e *Engine) WinnerIsA() bool { return e.ActiveA() != nil }

// AliveCountA counts side A's creatures still standing.
func (e *Engine) AliveCountA() int { return aliveCount(e.teamA) }

// AliveCountB counts side B's creatures still standing.
func (e *Engine) AliveCountB() int { return aliveCount(e.teamB) }

func aliveCount(team []*game.Creature) int {
	n := 0
	for _, c := range team {
		if c != nil && !c.Fainted() {
			n++
		}
	}
	return n
}

// advance skips both indices forward past fainted creatures. Indices only
// ever move forward; a fainted creature never returns.
func (e *Engine) advance() {
	for e.indexA < len(e.teamA) && e.teamA[e.indexA].Fainted() {
		e.indexA++
	}
	for e.indexB < len(e.teamB) && e.teamB[e.indexB].Fainted() {
		e.indexB++
	}
}

// attackerIsAFirst decides turn order. Higher speed acts first; on equal
// speed the creature with the lower dex number acts first, and if those
// match too, side A does. Both clients evaluate the same rule so the
// battle never diverges.
func attackerIsAFirst(a, b *game.Creature) bool {
	if a.Speed != b.Speed {
		return a.Speed > b.Speed
	}
	if a.DexID != b.DexID {
		return a.DexID < b.DexID
	}
	return true
}

// ResolveTurn applies both players' selected move slots and returns the
// ordered actions. Slots outside 1..4, empty slots and zero-power moves
// produce a zero-damage action. A creature fainted by the first attack of
// the turn does not act.
func (e *Engine) ResolveTurn(slotA, slotB int) TurnResult {
	e.advance()
	if e.ActiveA() == nil || e.ActiveB() == nil {
		return TurnResult{Finished: true}
	}

	a := e.ActiveA()
	b := e.ActiveB()
	aFirst := attackerIsAFirst(a, b)

	actions := make([]TurnAction, 0, 2)
	attack := func(attacker, defender *game.Creature, attackerIsA bool, slot int) {
		if attacker.Fainted() || defender.Fainted() {
			return
		}
		actions = append(actions, e.resolveAttack(attacker, defender, attackerIsA, slot))
	}

	if aFirst {
		attack(a, b, true, slotA)
		attack(b, a, false, slotB)
	} else {
		attack(b, a, false, slotB)
		attack(a, b, true, slotA)
	}

	e.advance()
	return TurnResult{
		AFirst:   aFirst,
		Actions:  actions,
		Finished: e.ActiveA() == nil || e.ActiveB() == nil,
	}
}

func (e *Engine) resolveAttack(attacker, defender *game.Creature, attackerIsA bool, slot int) TurnAction {
	move, ok := attacker.MoveAt(slot)
	if !ok || move.Power <= 0 {
		return TurnAction{
			SideA:           attackerIsA,
			Attacker:        attacker.Name,
			MoveName:        move.Name,
			Damage:          0,
			Defender:        defender.Name,
			DefenderHPAfter: defender.CurrentHP,
			DefenderFainted: defender.Fainted(),
		}
	}

	dmg := e.damage(attacker, defender, move)
	defender.CurrentHP -= dmg
	if defender.CurrentHP < 0 {
		defender.CurrentHP = 0
	}

	return TurnAction{
		SideA:           attackerIsA,
		Attacker:        attacker.Name,
		MoveName:        move.Name,
		Damage:          dmg,
		Defender:        defender.Name,
		DefenderHPAfter: defender.CurrentHP,
		DefenderFainted: defender.CurrentHP == 0,
	}
}

// damage implements the simplified level-50 formula. Stats are floored at
// 1 and the result at 1, even against an immune defender.
func (e *Engine) damage(attacker, defender *game.Creature, move game.MoveSlot) int {
	atk := attacker.Attack
	def := defender.Defense
	if move.Category == game.CategorySpecial {
		atk = attacker.SpAttack
		def = defender.SpDefense
	}
	if atk < 1 {
		atk = 1
	}
	if def < 1 {
		def = 1
	}

	levelTerm := (2.0*float64(e.level))/5.0 + 2.0
	base := (levelTerm*float64(move.Power)*float64(atk)/float64(def))/50.0 + 2.0

	stab := 1.0
	if hasStab(attacker, move.Type) {
		stab = 1.5
	}
	eff := Effectiveness(move.Type, defender.Types)

	dmg := int(math.Floor(base * stab * eff))
	if dmg < 1 {
		dmg = 1
	}
	return dmg
}

func hasStab(attacker *game.Creature, moveType string) bool {
	mt := strings.ToLower(strings.TrimSpace(moveType))
	if mt == "" {
		return false
	}
	for _, t := range attacker.Types {
		if strings.ToLower(strings.TrimSpace(t)) == mt {
			return true
		}
	}
	return false
}
