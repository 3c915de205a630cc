package arena

// Package arena brokers challenges and relays battle traffic between two
// subscribed players. The server never simulates combat: both clients run
// the same deterministic engine and the arena only forwards their inputs
// and settles the reported outcome exactly once.

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/Jaime-2616/ErronkaFinala/internal/battle"
	"github.com/Jaime-2616/ErronkaFinala/internal/constants"
	"github.com/Jaime-2616/ErronkaFinala/internal/dedupe"
	"github.com/Jaime-2616/ErronkaFinala/internal/keys"
	"github.com/Jaime-2616/ErronkaFinala/internal/logging"
	"github.com/Jaime-2616/ErronkaFinala/internal/protocol"
)

var (
	ErrPlayerUnavailable = errors.New("player is not available")
	ErrInvalidSlot       = errors.New("invalid move slot")
	ErrInvalidWinner     = errors.New("winner does not match the players")
	ErrAlreadySettled    = errors.New("match already settled")
	ErrPlayerNotInMatch  = errors.New("player does not belong to this match")
)

// Pusher delivers push lines to subscribed players.
type Pusher interface {
	SendTo(username string, line string) error
	IsOnline(username string) bool
}

// Settler persists match outcomes and returns the updated point totals.
type Settler interface {
	ApplyBattleEnd(winner, loser string, winnerAlive, loserAlive int) (winnerTotal, loserTotal int, err error)
	RecordSurrender(loser, winner string, loserAlive, winnerAlive int) error
}

// matchState tracks one negotiated battle. Players are stored normalized
// with playerA < playerB, matching the key order.
type matchState struct {
	playerA string
	playerB string
	teamA   string
	teamB   string
	ended   bool
}

// Broker owns the in-memory match table.
type Broker struct {
	pusher  Pusher
	settler Settler
	level   int

	mu      sync.Mutex
	matches map[string]*matchState
}

// NewBroker builds a broker over the given push and settlement backends.
// level is the battle level announced to both clients at match start.
func NewBroker(pusher Pusher, settler Settler, level int) *Broker {
	if level <= 0 {
		level = battle.DefaultLevel
	}
	return &Broker{pusher: pusher, settler: settler, level: level, matches: make(map[string]*matchState)}
}

// lookup returns the match record for the pair, if one was negotiated.
// Callers must hold b.mu. Records are only created by an accepted
// challenge; every other operation requires an existing one.
func (b *Broker) lookup(key string) (*matchState, bool) {
	st, ok := b.matches[key]
	return st, ok
}

// Challenge forwards a challenge to the target, who must be subscribed.
func (b *Broker) Challenge(from, to string) error {
	if !b.pusher.IsOnline(to) {
		return ErrPlayerUnavailable
	}
	return b.pusher.SendTo(to, protocol.Push(constants.PushChallenge, from))
}

// RespondChallenge handles the target's decision. An accept opens a fresh
// match record and announces the battle to both players; a reject only
// notifies the challenger.
func (b *Broker) RespondChallenge(responder, challenger, decision string) error {
	if strings.EqualFold(decision, constants.DecisionAccept) {
		key := keys.MatchKey(challenger, responder)
		b.mu.Lock()
		a, bb, _ := strings.Cut(key, "|")
		b.matches[key] = &matchState{playerA: a, playerB: bb}
		b.mu.Unlock()

		payload := protocol.Push(constants.PushBattleStart,
			challenger, responder, strconv.Itoa(b.level))
		if err := b.pusher.SendTo(challenger, payload); err != nil {
			return err
		}
		return b.pusher.SendTo(responder, payload)
	}
	return b.pusher.SendTo(challenger, protocol.Push(constants.PushChallengeRejected, responder))
}

// TeamSelected records the player's chosen team for the match against
// rival. Once both sides have picked, each player is told the other's
// team. A re-send after both are present repeats the announcement, which
// covers a client that reconnected mid-negotiation.
func (b *Broker) TeamSelected(from, rival, teamName string) error {
	key := keys.MatchKey(from, rival)
	nfrom := keys.Normalize(from)

	b.mu.Lock()
	st, ok := b.lookup(key)
	if !ok {
		b.mu.Unlock()
		return ErrPlayerNotInMatch
	}
	switch nfrom {
	case st.playerA:
		st.teamA = teamName
	case st.playerB:
		st.teamB = teamName
	default:
		b.mu.Unlock()
		return ErrPlayerNotInMatch
	}
	playerA, playerB := st.playerA, st.playerB
	teamA, teamB := st.teamA, st.teamB
	b.mu.Unlock()

	if teamA != "" && teamB != "" {
		_ = b.pusher.SendTo(playerA, protocol.Push(constants.PushRivalTeam, playerB, teamB))
		_ = b.pusher.SendTo(playerB, protocol.Push(constants.PushRivalTeam, playerA, teamA))
	}
	return nil
}

// MoveSelected relays a move slot pick to the rival.
func (b *Broker) MoveSelected(from, to string, slot int) error {
	if slot < 1 || slot > 4 {
		return ErrInvalidSlot
	}
	return b.pusher.SendTo(to, protocol.Push(constants.PushRivalMove, from, strconv.Itoa(slot)))
}

// Surrender ends the match in favor of the player who did not give up.
// The rival is notified and the outcome recorded; points do not move.
func (b *Broker) Surrender(from, to string, aliveFrom, aliveTo int) error {
	key := keys.MatchKey(from, to)

	b.mu.Lock()
	st, ok := b.lookup(key)
	if !ok {
		b.mu.Unlock()
		return ErrPlayerNotInMatch
	}
	if st.ended {
		b.mu.Unlock()
		return ErrAlreadySettled
	}
	st.ended = true
	b.mu.Unlock()

	_ = b.pusher.SendTo(to, protocol.Push(constants.PushSurrender, from))

	if err := b.settler.RecordSurrender(from, to, aliveFrom, aliveTo); err != nil {
		// Reopen the match so a retry can still settle it; otherwise the
		// pair is locked as ended with no history row.
		b.mu.Lock()
		st.ended = false
		b.mu.Unlock()
		logging.Error("failed to record surrender", err, logging.Fields{"match_key": key})
		return err
	}
	return nil
}

// BattleEnd settles a finished battle: points are applied, the history row
// written and both players told the final totals. Both clients report the
// same result; the first submission wins and any duplicate, sequential or
// concurrent, settles nothing.
func (b *Broker) BattleEnd(winner, p1, p2 string, alive1, alive2 int) error {
	var loser string
	switch {
	case strings.EqualFold(winner, p1):
		loser = p2
	case strings.EqualFold(winner, p2):
		loser = p1
	default:
		return ErrInvalidWinner
	}

	winnerAlive := alive1
	loserAlive := alive2
	if strings.EqualFold(winner, p2) {
		winnerAlive, loserAlive = alive2, alive1
	}

	key := keys.MatchKey(p1, p2)
	_, err, _ := dedupe.SettlementGroup.Do(key, func() (interface{}, error) {
		b.mu.Lock()
		st, ok := b.lookup(key)
		if !ok {
			b.mu.Unlock()
			return nil, ErrPlayerNotInMatch
		}
		if st.ended {
			b.mu.Unlock()
			return nil, ErrAlreadySettled
		}
		st.ended = true
		b.mu.Unlock()

		winnerTotal, loserTotal, err := b.settler.ApplyBattleEnd(winner, loser, winnerAlive, loserAlive)
		if err != nil {
			b.mu.Lock()
			st.ended = false
			b.mu.Unlock()
			return nil, err
		}

		payload := protocol.Push(constants.PushBattleEnd,
			winner, strconv.Itoa(winnerTotal), loser, strconv.Itoa(loserTotal))
		_ = b.pusher.SendTo(p1, payload)
		_ = b.pusher.SendTo(p2, payload)

		logging.Info("battle settled", logging.Fields{
			"match_key": key,
			"winner":    keys.Normalize(winner),
		})
		return nil, nil
	})
	return err
}

// DropPlayer clears every match record involving the player. Called when
// their session goes away; a half-negotiated or finished match does not
// survive a departure.
func (b *Broker) DropPlayer(username string) {
	name := keys.Normalize(username)
	b.mu.Lock()
	for key, st := range b.matches {
		if st.playerA == name || st.playerB == name {
			delete(b.matches, key)
		}
	}
	b.mu.Unlock()
}
