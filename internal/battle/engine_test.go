package battle

import (
	"testing"

	"github.com/Jaime-2616/ErronkaFinala/internal/game"
)

func testCreature(dex int, name string, types []string, hp, atk, def, spa, spd, spe int, moves ...game.MoveSlot) *game.Creature {
	c := &game.Creature{
		DexID:     dex,
		Name:      name,
		Types:     types,
		MaxHP:     hp,
		CurrentHP: hp,
		Attack:    atk,
		Defense:   def,
		SpAttack:  spa,
		SpDefense: spd,
		Speed:     spe,
	}
	for i, m := range moves {
		if i >= 4 {
			break
		}
		c.Moves[i] = m
	}
	return c
}

func TestResolveTurn_NeutralDamage(t *testing.T) {
	tackle := game.MoveSlot{Name: "Tackle", Type: "Normal", Category: game.CategoryPhysical, Power: 90}
	a := testCreature(1, "A", []string{"Fighting"}, 200, 100, 100, 100, 100, 60, tackle)
	b := testCreature(2, "B", []string{"Fighting"}, 200, 100, 100, 100, 100, 40, tackle)

	e := NewEngine([]*game.Creature{a}, []*game.Creature{b})
	res := e.ResolveTurn(1, 1)

	if !res.AFirst {
		t.Fatalf("expected faster side A to act first")
	}
	if len(res.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(res.Actions))
	}
	if res.Actions[0].Damage != 41 {
		t.Fatalf("expected 41 damage for atk=100 def=100 power=90 neutral, got %d", res.Actions[0].Damage)
	}
	if b.CurrentHP != 159 {
		t.Fatalf("expected defender at 159 HP, got %d", b.CurrentHP)
	}
}

func TestResolveTurn_StabAndEffectiveness(t *testing.T) {
	ember := game.MoveSlot{Name: "Ember", Type: "Fire", Category: game.CategorySpecial, Power: 90}
	a := testCreature(4, "Fiery", []string{"Fire"}, 300, 50, 50, 100, 100, 90, ember)
	b := testCreature(1, "Leafy", []string{"Grass"}, 300, 50, 50, 100, 100, 10, ember)

	e := NewEngine([]*game.Creature{a}, []*game.Creature{b})
	res := e.ResolveTurn(1, 1)

	// base 41.6, stab 1.5, fire vs grass 2x -> floor(124.8)
	if res.Actions[0].Damage != 124 {
		t.Fatalf("expected 124 damage with stab and 2x effectiveness, got %d", res.Actions[0].Damage)
	}
}

func TestResolveTurn_ImmunityStillDealsOne(t *testing.T) {
	tackle := game.MoveSlot{Name: "Tackle", Type: "Normal", Category: game.CategoryPhysical, Power: 90}
	a := testCreature(1, "A", []string{"Normal"}, 100, 100, 100, 100, 100, 90, tackle)
	b := testCreature(92, "Spooky", []string{"Ghost"}, 100, 100, 100, 100, 100, 10, tackle)

	e := NewEngine([]*game.Creature{a}, []*game.Creature{b})
	res := e.ResolveTurn(1, 1)

	if res.Actions[0].Damage != 1 {
		t.Fatalf("expected damage floored at 1 against immune type, got %d", res.Actions[0].Damage)
	}
}

func TestEffectiveness_DualTypeMultiplies(t *testing.T) {
	if got := Effectiveness("Grass", []string{"Water", "Ground"}); got != 4 {
		t.Fatalf("expected 4x grass vs water/ground, got %v", got)
	}
	if got := Effectiveness("Electric", []string{"Ground", "Flying"}); got != 0 {
		t.Fatalf("expected 0x electric vs ground/flying, got %v", got)
	}
	if got := Effectiveness("Fire", []string{"Water", "Grass"}); got != 1 {
		t.Fatalf("expected 1x fire vs water/grass, got %v", got)
	}
}

func TestResolveTurn_SpeedTieLowerDexFirst(t *testing.T) {
	tackle := game.MoveSlot{Name: "Tackle", Type: "Normal", Category: game.CategoryPhysical, Power: 50}
	a := testCreature(25, "A", []string{"Electric"}, 100, 50, 50, 50, 50, 70, tackle)
	b := testCreature(7, "B", []string{"Water"}, 100, 50, 50, 50, 50, 70, tackle)

	e := NewEngine([]*game.Creature{a}, []*game.Creature{b})
	res := e.ResolveTurn(1, 1)

	if res.AFirst {
		t.Fatalf("expected lower dex number to break the speed tie")
	}

	// Fully identical creatures fall back to side A.
	c := testCreature(7, "C", []string{"Water"}, 100, 50, 50, 50, 50, 70, tackle)
	d := testCreature(7, "D", []string{"Water"}, 100, 50, 50, 50, 50, 70, tackle)
	e2 := NewEngine([]*game.Creature{c}, []*game.Creature{d})
	if res2 := e2.ResolveTurn(1, 1); !res2.AFirst {
		t.Fatalf("expected side A to act first when speed and dex match")
	}
}

func TestResolveTurn_FaintedDefenderDoesNotAct(t *testing.T) {
	nuke := game.MoveSlot{Name: "Nuke", Type: "Normal", Category: game.CategoryPhysical, Power: 250}
	tackle := game.MoveSlot{Name: "Tackle", Type: "Normal", Category: game.CategoryPhysical, Power: 50}
	a := testCreature(1, "A", []string{"Normal"}, 100, 200, 50, 50, 50, 90, nuke)
	b := testCreature(2, "B", []string{"Normal"}, 10, 50, 50, 50, 50, 10, tackle)

	e := NewEngine([]*game.Creature{a}, []*game.Creature{b})
	res := e.ResolveTurn(1, 1)

	if len(res.Actions) != 1 {
		t.Fatalf("expected exactly 1 action when the first attack faints the defender, got %d", len(res.Actions))
	}
	if !res.Actions[0].DefenderFainted {
		t.Fatalf("expected the defender to faint")
	}
	if !res.Finished {
		t.Fatalf("expected battle finished after sole defender fainted")
	}
	if !e.WinnerIsA() {
		t.Fatalf("expected side A to win")
	}
}

func TestResolveTurn_FaintedSkipForward(t *testing.T) {
	nuke := game.MoveSlot{Name: "Nuke", Type: "Normal", Category: game.CategoryPhysical, Power: 250}
	tackle := game.MoveSlot{Name: "Tackle", Type: "Normal", Category: game.CategoryPhysical, Power: 50}
	a := testCreature(1, "A", []string{"Normal"}, 500, 200, 50, 50, 50, 90, nuke)
	b1 := testCreature(2, "B1", []string{"Normal"}, 10, 50, 50, 50, 50, 10, tackle)
	b2 := testCreature(3, "B2", []string{"Normal"}, 300, 50, 50, 50, 50, 10, tackle)

	e := NewEngine([]*game.Creature{a}, []*game.Creature{b1, b2})
	res := e.ResolveTurn(1, 1)

	if res.Finished {
		t.Fatalf("expected battle to continue with a reserve creature left")
	}
	if e.ActiveB() != b2 {
		t.Fatalf("expected the next creature to step in after a faint")
	}
	if e.AliveCountB() != 1 {
		t.Fatalf("expected 1 alive on side B, got %d", e.AliveCountB())
	}
}

func TestResolveTurn_InvalidSlotZeroDamage(t *testing.T) {
	tackle := game.MoveSlot{Name: "Tackle", Type: "Normal", Category: game.CategoryPhysical, Power: 50}
	a := testCreature(1, "A", []string{"Normal"}, 100, 50, 50, 50, 50, 90, tackle)
	b := testCreature(2, "B", []string{"Normal"}, 100, 50, 50, 50, 50, 10, tackle)

	e := NewEngine([]*game.Creature{a}, []*game.Creature{b})
	res := e.ResolveTurn(7, 2) // slot 7 out of range, slot 2 unset

	if len(res.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(res.Actions))
	}
	for _, act := range res.Actions {
		if act.Damage != 0 {
			t.Fatalf("expected zero damage for invalid or empty slot, got %d", act.Damage)
		}
	}
	if a.CurrentHP != 100 || b.CurrentHP != 100 {
		t.Fatalf("expected no HP change, got %d and %d", a.CurrentHP, b.CurrentHP)
	}
}

func TestResolveTurn_Deterministic(t *testing.T) {
	build := func() *Engine {
		quick := game.MoveSlot{Name: "Quick Attack", Type: "Normal", Category: game.CategoryPhysical, Power: 40}
		surf := game.MoveSlot{Name: "Surf", Type: "Water", Category: game.CategorySpecial, Power: 90}
		a := testCreature(25, "A", []string{"Electric"}, 150, 80, 60, 90, 70, 75, quick, surf)
		b := testCreature(9, "B", []string{"Water"}, 150, 70, 90, 85, 95, 75, quick, surf)
		return NewEngine([]*game.Creature{a}, []*game.Creature{b})
	}

	e1, e2 := build(), build()
	for turn := 0; turn < 3; turn++ {
		r1 := e1.ResolveTurn(2, 1)
		r2 := e2.ResolveTurn(2, 1)
		if r1.AFirst != r2.AFirst || len(r1.Actions) != len(r2.Actions) {
			t.Fatalf("turn %d diverged in shape", turn)
		}
		for i := range r1.Actions {
			if r1.Actions[i] != r2.Actions[i] {
				t.Fatalf("turn %d action %d diverged: %+v vs %+v", turn, i, r1.Actions[i], r2.Actions[i])
			}
		}
	}
}

func TestDamage_SpecialUsesSpecialStats(t *testing.T) {
	beam := game.MoveSlot{Name: "Beam", Type: "Normal", Category: game.CategorySpecial, Power: 90}
	a := testCreature(1, "A", []string{"Fighting"}, 200, 10, 100, 100, 100, 90, beam)
	b := testCreature(2, "B", []string{"Fighting"}, 200, 100, 10, 100, 100, 10, beam)

	e := NewEngine([]*game.Creature{a}, []*game.Creature{b})
	res := e.ResolveTurn(1, 1)

	// Special uses SpAttack/SpDefense (100/100), not the lopsided
	// physical stats, so the neutral 90-power damage lands at 41.
	if res.Actions[0].Damage != 41 {
		t.Fatalf("expected 41 special damage, got %d", res.Actions[0].Damage)
	}
}
