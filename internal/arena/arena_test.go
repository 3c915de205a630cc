package arena

import (
	"errors"
	"strings"
	"sync"
	"testing"
)

type fakePusher struct {
	mu      sync.Mutex
	offline map[string]bool
	sent    map[string][]string
}

func newFakePusher() *fakePusher {
	return &fakePusher{offline: make(map[string]bool), sent: make(map[string][]string)}
}

func (f *fakePusher) SendTo(username, line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.ToLower(username)
	if f.offline[key] {
		return errors.New("not subscribed")
	}
	f.sent[key] = append(f.sent[key], line)
	return nil
}

func (f *fakePusher) IsOnline(username string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.offline[strings.ToLower(username)]
}

func (f *fakePusher) linesFor(username string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent[strings.ToLower(username)]...)
}

type fakeSettler struct {
	mu           sync.Mutex
	settled      int
	surrenders   int
	settleErr    error
	surrenderErr error
}

func (f *fakeSettler) ApplyBattleEnd(winner, loser string, winnerAlive, loserAlive int) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.settleErr != nil {
		err := f.settleErr
		f.settleErr = nil
		return 0, 0, err
	}
	f.settled++
	delta := 20
	switch {
	case winnerAlive >= 6:
		delta = 60
	case winnerAlive == 5:
		delta = 50
	case winnerAlive == 4:
		delta = 40
	case winnerAlive == 3:
		delta = 30
	}
	return delta, 0, nil
}

func (f *fakeSettler) RecordSurrender(loser, winner string, loserAlive, winnerAlive int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.surrenderErr != nil {
		err := f.surrenderErr
		f.surrenderErr = nil
		return err
	}
	f.surrenders++
	return nil
}

func (f *fakeSettler) settledCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settled
}

func newBroker(p Pusher, s Settler) *Broker {
	return NewBroker(p, s, 50)
}

// accept opens the ana/jon match the way a real negotiation would.
func acceptMatch(t *testing.T, b *Broker, p *fakePusher) {
	t.Helper()
	if err := b.RespondChallenge("jon", "ana", "ACCEPT"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	p.mu.Lock()
	p.sent = map[string][]string{}
	p.mu.Unlock()
}

func TestChallenge_TargetOffline(t *testing.T) {
	p := newFakePusher()
	p.offline["jon"] = true
	b := newBroker(p, &fakeSettler{})

	if err := b.Challenge("ana", "jon"); !errors.Is(err, ErrPlayerUnavailable) {
		t.Fatalf("expected ErrPlayerUnavailable, got %v", err)
	}
}

func TestChallenge_Forwards(t *testing.T) {
	p := newFakePusher()
	b := newBroker(p, &fakeSettler{})

	if err := b.Challenge("ana", "jon"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.linesFor("jon"); len(got) != 1 || got[0] != "CHALLENGE|ana\n" {
		t.Fatalf("unexpected push: %v", got)
	}
}

func TestRespondChallenge_AcceptAnnouncesBothWithLevel(t *testing.T) {
	p := newFakePusher()
	b := NewBroker(p, &fakeSettler{}, 75)

	if err := b.RespondChallenge("jon", "ana", "ACCEPT"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "BATTLE_START|ana|jon|75\n"
	if got := p.linesFor("ana"); len(got) != 1 || got[0] != want {
		t.Fatalf("challenger push: %v", got)
	}
	if got := p.linesFor("jon"); len(got) != 1 || got[0] != want {
		t.Fatalf("responder push: %v", got)
	}
}

func TestRespondChallenge_RejectNotifiesChallengerOnly(t *testing.T) {
	p := newFakePusher()
	b := newBroker(p, &fakeSettler{})

	if err := b.RespondChallenge("jon", "ana", "reject"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.linesFor("ana"); len(got) != 1 || got[0] != "CHALLENGE_REJECTED|jon\n" {
		t.Fatalf("challenger push: %v", got)
	}
	if got := p.linesFor("jon"); len(got) != 0 {
		t.Fatalf("responder must not be notified: %v", got)
	}
}

func TestTeamSelected_BothPicksAnnounceRivalTeams(t *testing.T) {
	p := newFakePusher()
	b := newBroker(p, &fakeSettler{})
	acceptMatch(t, b, p)

	if err := b.TeamSelected("Ana", "jon", "Fire Squad"); err != nil {
		t.Fatalf("first pick: %v", err)
	}
	if got := p.linesFor("jon"); len(got) != 0 {
		t.Fatalf("no announcement before both picked: %v", got)
	}

	if err := b.TeamSelected("JON", "ana", "Tide Pool"); err != nil {
		t.Fatalf("second pick: %v", err)
	}
	if got := p.linesFor("ana"); len(got) != 1 || got[0] != "RIVAL_TEAM|jon|Tide Pool\n" {
		t.Fatalf("ana push: %v", got)
	}
	if got := p.linesFor("jon"); len(got) != 1 || got[0] != "RIVAL_TEAM|ana|Fire Squad\n" {
		t.Fatalf("jon push: %v", got)
	}
}

func TestTeamSelected_WithoutAcceptedChallenge(t *testing.T) {
	p := newFakePusher()
	b := newBroker(p, &fakeSettler{})

	if err := b.TeamSelected("ana", "jon", "Fire Squad"); !errors.Is(err, ErrPlayerNotInMatch) {
		t.Fatalf("expected ErrPlayerNotInMatch, got %v", err)
	}
	if len(b.matches) != 0 {
		t.Fatalf("no record may be created outside an accept")
	}
}

func TestTeamSelected_OutsiderRejected(t *testing.T) {
	p := newFakePusher()
	b := newBroker(p, &fakeSettler{})
	acceptMatch(t, b, p)

	// mikel never negotiated with either player; his pick opens nothing.
	if err := b.TeamSelected("mikel", "ana", "Intruders"); !errors.Is(err, ErrPlayerNotInMatch) {
		t.Fatalf("expected ErrPlayerNotInMatch, got %v", err)
	}
	if _, ok := b.matches["ana|mikel"]; ok {
		t.Fatalf("outsider pick must not create a record")
	}
}

func TestMoveSelected(t *testing.T) {
	p := newFakePusher()
	b := newBroker(p, &fakeSettler{})

	if err := b.MoveSelected("ana", "jon", 0); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot for 0, got %v", err)
	}
	if err := b.MoveSelected("ana", "jon", 5); !errors.Is(err, ErrInvalidSlot) {
		t.Fatalf("expected ErrInvalidSlot for 5, got %v", err)
	}
	if err := b.MoveSelected("ana", "jon", 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.linesFor("jon"); len(got) != 1 || got[0] != "RIVAL_MOVE|ana|3\n" {
		t.Fatalf("unexpected push: %v", got)
	}
}

func TestSurrender_RivalWinsWithoutPoints(t *testing.T) {
	p := newFakePusher()
	s := &fakeSettler{}
	b := newBroker(p, s)
	acceptMatch(t, b, p)

	if err := b.Surrender("ana", "jon", 2, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := p.linesFor("jon"); len(got) != 1 || got[0] != "SURRENDER|ana\n" {
		t.Fatalf("unexpected push: %v", got)
	}
	if s.surrenders != 1 || s.settledCount() != 0 {
		t.Fatalf("expected one surrender record and no point settlement")
	}

	if err := b.Surrender("ana", "jon", 2, 4); !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled on repeat, got %v", err)
	}
}

func TestSurrender_RequiresMatch(t *testing.T) {
	b := newBroker(newFakePusher(), &fakeSettler{})
	if err := b.Surrender("ana", "jon", 2, 4); !errors.Is(err, ErrPlayerNotInMatch) {
		t.Fatalf("expected ErrPlayerNotInMatch, got %v", err)
	}
}

func TestSurrender_RecordFailureReopensMatch(t *testing.T) {
	p := newFakePusher()
	s := &fakeSettler{surrenderErr: errors.New("disk full")}
	b := newBroker(p, s)
	acceptMatch(t, b, p)

	if err := b.Surrender("ana", "jon", 2, 4); err == nil {
		t.Fatalf("expected record error")
	}
	// The failed attempt must not lock the match as settled.
	if err := b.Surrender("ana", "jon", 2, 4); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if s.surrenders != 1 {
		t.Fatalf("expected one surrender record, got %d", s.surrenders)
	}
}

func TestBattleEnd_SettlesAndNotifiesBoth(t *testing.T) {
	p := newFakePusher()
	s := &fakeSettler{}
	b := newBroker(p, s)
	acceptMatch(t, b, p)

	if err := b.BattleEnd("jon", "ana", "jon", 0, 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "BATTLE_END|jon|40|ana|0\n"
	if got := p.linesFor("ana"); len(got) != 1 || got[0] != want {
		t.Fatalf("ana push: %v", got)
	}
	if got := p.linesFor("jon"); len(got) != 1 || got[0] != want {
		t.Fatalf("jon push: %v", got)
	}
	if s.settledCount() != 1 {
		t.Fatalf("expected exactly one settlement")
	}
}

func TestBattleEnd_InvalidWinner(t *testing.T) {
	b := newBroker(newFakePusher(), &fakeSettler{})
	if err := b.BattleEnd("mikel", "ana", "jon", 1, 2); !errors.Is(err, ErrInvalidWinner) {
		t.Fatalf("expected ErrInvalidWinner, got %v", err)
	}
}

func TestBattleEnd_RequiresMatch(t *testing.T) {
	b := newBroker(newFakePusher(), &fakeSettler{})
	if err := b.BattleEnd("jon", "ana", "jon", 1, 3); !errors.Is(err, ErrPlayerNotInMatch) {
		t.Fatalf("expected ErrPlayerNotInMatch, got %v", err)
	}
}

func TestBattleEnd_DuplicateSettlesOnce(t *testing.T) {
	p := newFakePusher()
	s := &fakeSettler{}
	b := newBroker(p, s)
	acceptMatch(t, b, p)

	if err := b.BattleEnd("JON", "Ana", "Jon", 1, 3); err != nil {
		t.Fatalf("first report: %v", err)
	}
	if err := b.BattleEnd("jon", "ana", "jon", 1, 3); !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
	if s.settledCount() != 1 {
		t.Fatalf("expected one settlement, got %d", s.settledCount())
	}
}

func TestBattleEnd_ConcurrentReportsSettleOnce(t *testing.T) {
	p := newFakePusher()
	s := &fakeSettler{}
	b := newBroker(p, s)
	acceptMatch(t, b, p)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = b.BattleEnd("jon", "ana", "jon", 1, 3)
		}()
	}
	wg.Wait()

	if s.settledCount() != 1 {
		t.Fatalf("expected one settlement under concurrency, got %d", s.settledCount())
	}
}

func TestBattleEnd_SettleFailureReopensMatch(t *testing.T) {
	p := newFakePusher()
	s := &fakeSettler{settleErr: errors.New("db locked")}
	b := newBroker(p, s)
	acceptMatch(t, b, p)

	if err := b.BattleEnd("jon", "ana", "jon", 1, 3); err == nil {
		t.Fatalf("expected settlement error")
	}
	if err := b.BattleEnd("jon", "ana", "jon", 1, 3); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if s.settledCount() != 1 {
		t.Fatalf("expected one settlement, got %d", s.settledCount())
	}
}

func TestRematchAfterReaccept(t *testing.T) {
	p := newFakePusher()
	s := &fakeSettler{}
	b := newBroker(p, s)
	acceptMatch(t, b, p)

	if err := b.BattleEnd("jon", "ana", "jon", 1, 3); err != nil {
		t.Fatalf("first settlement: %v", err)
	}
	acceptMatch(t, b, p)
	if err := b.BattleEnd("ana", "ana", "jon", 4, 0); err != nil {
		t.Fatalf("rematch settlement: %v", err)
	}
	if s.settledCount() != 2 {
		t.Fatalf("expected two settlements, got %d", s.settledCount())
	}
}

func TestDropPlayer_ClearsMatches(t *testing.T) {
	p := newFakePusher()
	b := newBroker(p, &fakeSettler{})
	acceptMatch(t, b, p)

	b.DropPlayer("ANA")

	if err := b.TeamSelected("ana", "jon", "Fire Squad"); !errors.Is(err, ErrPlayerNotInMatch) {
		t.Fatalf("expected ErrPlayerNotInMatch after drop, got %v", err)
	}
	if len(b.matches) != 0 {
		t.Fatalf("match table should be empty, has %d", len(b.matches))
	}
}
