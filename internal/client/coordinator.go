package client

import (
	"errors"
	"sync"

	"github.com/Jaime-2616/ErronkaFinala/internal/battle"
	"github.com/Jaime-2616/ErronkaFinala/internal/game"
)

var (
	ErrBattleOver    = errors.New("battle already over")
	ErrActiveFainted = errors.New("active creature has fainted")
	ErrMovePending   = errors.New("move already pending for this round")
)

// EndReport is handed to the end callback exactly once, by the goroutine
// that resolved the final turn.
type EndReport struct {
	LocalWon   bool
	AliveLocal int
	AliveRival int
}

// Coordinator pairs the local player's move with the rival's relayed move
// and resolves the turn exactly once per round, whichever side's input
// arrives first. Both peers run one; the shared engine is deterministic so
// they stay in lockstep without a server-side referee.
type Coordinator struct {
	mu        sync.Mutex
	engine    *battle.Engine
	localIsA  bool
	localSlot int
	rivalSlot int
	over      bool
	onEnd     func(EndReport)
	endFired  bool
}

// NewCoordinator builds a coordinator over a fresh engine. localIsA fixes
// which side of the engine the local player drives; both peers must agree,
// so the challenger takes side A. onEnd may be nil.
func NewCoordinator(engine *battle.Engine, localIsA bool, onEnd func(EndReport)) *Coordinator {
	return &Coordinator{engine: engine, localIsA: localIsA, onEnd: onEnd}
}

// SubmitLocal records the local player's move slot. A duplicate submission
// for the same round fails with ErrMovePending so callers know the pick
// was not stored and must not be relayed again. The returned result is
// non-nil only when this call completed the round.
func (c *Coordinator) SubmitLocal(slot int) (*battle.TurnResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.over {
		return nil, ErrBattleOver
	}
	if c.localActive() == nil || c.localActive().Fainted() {
		return nil, ErrActiveFainted
	}
	if c.localSlot != 0 {
		return nil, ErrMovePending
	}
	c.localSlot = slot
	return c.resolveIfReady(), nil
}

// SubmitRival records the slot relayed from the other peer.
func (c *Coordinator) SubmitRival(slot int) (*battle.TurnResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.over {
		return nil, ErrBattleOver
	}
	if c.rivalSlot != 0 {
		return nil, nil
	}
	c.rivalSlot = slot
	return c.resolveIfReady(), nil
}

// WaitingForRival reports whether the local move is in and the round is
// blocked on the relay.
func (c *Coordinator) WaitingForRival() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.localSlot != 0 && c.rivalSlot == 0
}

// Over reports whether a side has run out of creatures.
func (c *Coordinator) Over() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.over
}

// AliveCounts returns the local and rival alive counts.
func (c *Coordinator) AliveCounts() (local, rival int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.localIsA {
		return c.engine.AliveCountA(), c.engine.AliveCountB()
	}
	return c.engine.AliveCountB(), c.engine.AliveCountA()
}

func (c *Coordinator) localActive() *game.Creature {
	if c.localIsA {
		return c.engine.ActiveA()
	}
	return c.engine.ActiveB()
}

// resolveIfReady runs the engine once both slots are in. Caller holds the
// mutex.
func (c *Coordinator) resolveIfReady() *battle.TurnResult {
	if c.localSlot == 0 || c.rivalSlot == 0 {
		return nil
	}
	slotA, slotB := c.localSlot, c.rivalSlot
	if !c.localIsA {
		slotA, slotB = c.rivalSlot, c.localSlot
	}
	c.localSlot, c.rivalSlot = 0, 0

	result := c.engine.ResolveTurn(slotA, slotB)
	if result.Finished {
		c.over = true
		if c.onEnd != nil && !c.endFired {
			c.endFired = true
			localWon := c.engine.WinnerIsA() == c.localIsA
			local, rival := c.engine.AliveCountA(), c.engine.AliveCountB()
			if !c.localIsA {
				local, rival = rival, local
			}
			c.onEnd(EndReport{LocalWon: localWon, AliveLocal: local, AliveRival: rival})
		}
	}
	return &result
}
