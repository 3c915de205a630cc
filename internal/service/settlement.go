package service

import (
	"github.com/Jaime-2616/ErronkaFinala/internal/constants"
	"github.com/Jaime-2616/ErronkaFinala/internal/game"
	"github.com/Jaime-2616/ErronkaFinala/internal/logging"
)

// SettleRepo is the minimal repository interface required by settlement.
type SettleRepo interface {
	ApplyBattlePoints(winner string, winnerDelta int, loser string, loserDelta int) (winnerTotal, loserTotal int, err error)
	InsertBattleRecord(rec *game.BattleRecord) error
}

// loserDelta is the flat penalty for losing a battle. The repository
// floors the resulting total at zero.
const loserDelta = -30

// winnerDelta scales the reward by how many creatures the winner kept
// standing.
func winnerDelta(alive int) int {
	switch {
	case alive >= 6:
		return 60
	case alive == 5:
		return 50
	case alive == 4:
		return 40
	case alive == 3:
		return 30
	default:
		return 20
	}
}

// Settlement applies point movement and records history for finished
// battles. It is the settlement backend the arena broker talks to.
type Settlement struct {
	Repo SettleRepo
}

// ApplyBattleEnd moves points for a normally finished battle and writes
// the history row. Returns both players' updated totals.
func (s *Settlement) ApplyBattleEnd(winner, loser string, winnerAlive, loserAlive int) (int, int, error) {
	delta := winnerDelta(winnerAlive)
	winnerTotal, loserTotal, err := s.Repo.ApplyBattlePoints(winner, delta, loser, loserDelta)
	if err != nil {
		return 0, 0, err
	}

	rec := &game.BattleRecord{
		PlayerA:      winner,
		PlayerB:      loser,
		Winner:       winner,
		Loser:        loser,
		PlayerAAlive: winnerAlive,
		PlayerBAlive: loserAlive,
		WinnerPoints: winnerTotal,
		LoserPoints:  loserTotal,
		EndReason:    constants.EndReasonNormal,
	}
	if err := s.Repo.InsertBattleRecord(rec); err != nil {
		return 0, 0, err
	}

	logging.Info("battle points applied", logging.Fields{
		"winner":       winner,
		"winner_delta": delta,
		"loser":        loser,
		"loser_delta":  loserDelta,
	})
	return winnerTotal, loserTotal, nil
}

// RecordSurrender writes the history row for a surrendered battle. The
// player who stayed is the winner; points do not move.
func (s *Settlement) RecordSurrender(loser, winner string, loserAlive, winnerAlive int) error {
	rec := &game.BattleRecord{
		PlayerA:      loser,
		PlayerB:      winner,
		Winner:       winner,
		Loser:        loser,
		PlayerAAlive: loserAlive,
		PlayerBAlive: winnerAlive,
		EndReason:    constants.EndReasonSurrender,
	}
	return s.Repo.InsertBattleRecord(rec)
}
