package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Jaime-2616/ErronkaFinala/internal/battle"
	"github.com/Jaime-2616/ErronkaFinala/internal/client"
	"github.com/Jaime-2616/ErronkaFinala/internal/constants"
	"github.com/Jaime-2616/ErronkaFinala/internal/game"
)

type battlePhase int

const (
	phasePickTeam battlePhase = iota
	phaseAwaitRivalTeam
	phaseFight
)

// battleState drives one match from team selection to settlement. The
// challenger always takes engine side A so both peers agree on ordering.
type battleState struct {
	client   *client.Client
	sub      *client.Subscriber
	username string
	rival    string

	challenger string
	responder  string
	localIsA   bool
	level      int

	phase     battlePhase
	localTeam []*game.Creature
	coord     *client.Coordinator
	endSent   bool
	finished  bool
}

func newBattleState(c *client.Client, sub *client.Subscriber, username, challenger, responder string, level int) *battleState {
	if level <= 0 {
		level = battle.DefaultLevel
	}
	st := &battleState{
		client:     c,
		sub:        sub,
		username:   username,
		challenger: challenger,
		responder:  responder,
		localIsA:   strings.EqualFold(username, challenger),
		level:      level,
		phase:      phasePickTeam,
	}
	if st.localIsA {
		st.rival = responder
	} else {
		st.rival = challenger
	}
	return st
}

func (b *battleState) handleInput(line string) {
	switch b.phase {
	case phasePickTeam:
		b.pickTeam(strings.TrimSpace(line))
	case phaseAwaitRivalTeam:
		fmt.Println("waiting for rival's team...")
	case phaseFight:
		b.fightInput(strings.TrimSpace(line))
	}
}

func (b *battleState) pickTeam(teamName string) {
	if teamName == "" {
		fmt.Print("pick a team name: ")
		return
	}
	team, err := b.client.LoadTeam(teamName)
	if err != nil {
		fmt.Println("could not load team:", err)
		fmt.Print("pick a team name: ")
		return
	}
	if err := b.sub.TeamSelected(b.rival, teamName); err != nil {
		fmt.Println("error:", err)
		return
	}
	b.localTeam = team
	b.phase = phaseAwaitRivalTeam
	fmt.Println("team locked in, waiting for rival...")
}

func (b *battleState) fightInput(line string) {
	if strings.EqualFold(line, "surrender") {
		local, rivalAlive := b.coord.AliveCounts()
		if err := b.sub.Surrender(b.rival, local, rivalAlive); err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Println("you surrendered")
		b.finished = true
		return
	}

	slot, err := strconv.Atoi(line)
	if err != nil || slot < 1 || slot > 4 {
		fmt.Println("pick a move slot 1-4, or 'surrender'")
		return
	}
	result, err := b.coord.SubmitLocal(slot)
	if errors.Is(err, client.ErrMovePending) {
		fmt.Println("move already locked in, waiting for rival...")
		return
	}
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	// Relay only a stored pick; a repeated click must never reach the
	// rival or the engines drift apart.
	if err := b.sub.MoveSelected(b.rival, slot); err != nil {
		fmt.Println("error:", err)
		return
	}
	if result == nil {
		fmt.Println("waiting for rival's move...")
		return
	}
	b.printTurn(result)
}

func (b *battleState) handlePush(push client.Push) {
	switch push.Kind {
	case constants.PushRivalTeam:
		b.rivalTeamChosen(push.Arg(1))
	case constants.PushRivalMove:
		slot, err := strconv.Atoi(push.Arg(1))
		if err != nil {
			return
		}
		result, err := b.coord.SubmitRival(slot)
		if err != nil || result == nil {
			return
		}
		b.printTurn(result)
	case constants.PushSurrender:
		fmt.Printf("%s surrendered, you win!\n", push.Arg(0))
		b.finished = true
	case constants.PushBattleEnd:
		fmt.Printf("final: %s has %s points, %s has %s points\n",
			push.Arg(0), push.Arg(1), push.Arg(2), push.Arg(3))
		b.finished = true
	case constants.PushChat:
		fmt.Printf("[%s] %s\n", push.Arg(0), push.Arg(1))
	}
}

func (b *battleState) rivalTeamChosen(teamName string) {
	if b.phase == phaseFight {
		return
	}
	rivalTeam, err := b.client.LoadTeam(teamName)
	if err != nil {
		fmt.Println("could not load rival team:", err)
		return
	}

	teamA, teamB := b.localTeam, rivalTeam
	if !b.localIsA {
		teamA, teamB = rivalTeam, b.localTeam
	}
	engine := battle.NewEngineAtLevel(teamA, teamB, b.level)
	b.coord = client.NewCoordinator(engine, b.localIsA, b.reportEnd)
	b.phase = phaseFight
	fmt.Printf("rival picked %q. fight! pick a move slot 1-4\n", teamName)
	b.printActive()
}

// reportEnd submits the settlement once. Both peers report the same
// outcome; the server settles whichever arrives first.
func (b *battleState) reportEnd(r client.EndReport) {
	if b.endSent {
		return
	}
	b.endSent = true

	winner := b.username
	if !r.LocalWon {
		winner = b.rival
	}
	alive1, alive2 := r.AliveLocal, r.AliveRival
	if !b.localIsA {
		alive1, alive2 = r.AliveRival, r.AliveLocal
	}
	if err := b.sub.BattleEnd(winner, b.challenger, b.responder, alive1, alive2); err != nil {
		fmt.Println("settlement error:", err)
	}
}

func (b *battleState) printTurn(result *battle.TurnResult) {
	for _, action := range result.Actions {
		if action.Damage == 0 {
			fmt.Printf("%s flails and deals no damage\n", action.Attacker)
			continue
		}
		fmt.Printf("%s used %s: %d damage, %s at %d HP\n",
			action.Attacker, action.MoveName, action.Damage, action.Defender, action.DefenderHPAfter)
		if action.DefenderFainted {
			fmt.Printf("%s fainted!\n", action.Defender)
		}
	}
	if result.Finished {
		local, _ := b.coord.AliveCounts()
		if local > 0 {
			fmt.Println("you win!")
		} else {
			fmt.Println("you lose!")
		}
		return
	}
	b.printActive()
}

func (b *battleState) printActive() {
	local, rival := b.coord.AliveCounts()
	fmt.Printf("alive: you %d, rival %d. your move (1-4): \n", local, rival)
}
