package service

import (
	"testing"

	"github.com/Jaime-2616/ErronkaFinala/internal/game"
)

type mockSettleRepo struct {
	winner      string
	winnerDelta int
	loser       string
	loserDelta  int
	records     []*game.BattleRecord
}

func (m *mockSettleRepo) ApplyBattlePoints(winner string, winnerDelta int, loser string, loserDelta int) (int, int, error) {
	m.winner = winner
	m.winnerDelta = winnerDelta
	m.loser = loser
	m.loserDelta = loserDelta
	loserTotal := 100 + loserDelta
	if loserTotal < 0 {
		loserTotal = 0
	}
	return 100 + winnerDelta, loserTotal, nil
}

func (m *mockSettleRepo) InsertBattleRecord(rec *game.BattleRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func TestApplyBattleEnd_DeltaByAliveCount(t *testing.T) {
	cases := []struct {
		alive int
		delta int
	}{
		{0, 20}, {1, 20}, {2, 20}, {3, 30}, {4, 40}, {5, 50}, {6, 60}, {7, 60},
	}
	for _, c := range cases {
		repo := &mockSettleRepo{}
		s := &Settlement{Repo: repo}
		if _, _, err := s.ApplyBattleEnd("ana", "jon", c.alive, 0); err != nil {
			t.Fatalf("alive=%d: %v", c.alive, err)
		}
		if repo.winnerDelta != c.delta {
			t.Fatalf("alive=%d: expected winner delta %d, got %d", c.alive, c.delta, repo.winnerDelta)
		}
		if repo.loserDelta != -30 {
			t.Fatalf("alive=%d: expected loser delta -30, got %d", c.alive, repo.loserDelta)
		}
	}
}

func TestApplyBattleEnd_WritesHistory(t *testing.T) {
	repo := &mockSettleRepo{}
	s := &Settlement{Repo: repo}

	wTotal, lTotal, err := s.ApplyBattleEnd("ana", "jon", 4, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wTotal != 140 || lTotal != 70 {
		t.Fatalf("unexpected totals: %d, %d", wTotal, lTotal)
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected one history record")
	}
	rec := repo.records[0]
	if rec.Winner != "ana" || rec.Loser != "jon" || rec.EndReason != "NORMAL" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.PlayerAAlive != 4 || rec.PlayerBAlive != 0 {
		t.Fatalf("unexpected alive counts: %+v", rec)
	}
	if rec.WinnerPoints != 140 || rec.LoserPoints != 70 {
		t.Fatalf("unexpected totals on record: %+v", rec)
	}
}

func TestRecordSurrender_NoPointsMove(t *testing.T) {
	repo := &mockSettleRepo{}
	s := &Settlement{Repo: repo}

	if err := s.RecordSurrender("ana", "jon", 2, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.winner != "" {
		t.Fatalf("surrender must not touch points")
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected one history record")
	}
	rec := repo.records[0]
	if rec.Winner != "jon" || rec.Loser != "ana" || rec.EndReason != "SURRENDER" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}
