package storage

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Jaime-2616/ErronkaFinala/internal/game"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&game.User{}, &game.BattleRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Create(&[]game.User{
		{Username: "ana", PasswordHash: "x", Points: 100},
		{Username: "jon", PasswordHash: "x", Points: 10},
	}).Error; err != nil {
		t.Fatalf("seed users: %v", err)
	}
	return NewSQLiteRepository(db)
}

func TestApplyBattlePointsLoserFloorsAtZero(t *testing.T) {
	repo := newTestRepo(t)

	winnerTotal, loserTotal, err := repo.ApplyBattlePoints("ana", 40, "jon", -30)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if winnerTotal != 140 {
		t.Fatalf("winner total = %d, want 140", winnerTotal)
	}
	// 10 - 30 clamps at zero, never negative.
	if loserTotal != 0 {
		t.Fatalf("loser total = %d, want 0", loserTotal)
	}
	if pts, err := repo.GetPoints("jon"); err != nil || pts != 0 {
		t.Fatalf("persisted loser points = %d err=%v", pts, err)
	}
}

func TestApplyBattlePointsAboveFloor(t *testing.T) {
	repo := newTestRepo(t)

	winnerTotal, loserTotal, err := repo.ApplyBattlePoints("jon", 30, "ana", -30)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if winnerTotal != 40 || loserTotal != 70 {
		t.Fatalf("totals = %d/%d, want 40/70", winnerTotal, loserTotal)
	}
}
