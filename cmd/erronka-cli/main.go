package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Jaime-2616/ErronkaFinala/internal/client"
	"github.com/Jaime-2616/ErronkaFinala/internal/constants"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:5000", "server address")
	flag.Parse()

	c := client.New(*addr)
	scanner := bufio.NewScanner(os.Stdin)

	username, err := authenticate(c, scanner)
	if err != nil {
		fmt.Fprintln(os.Stderr, "login failed:", err)
		os.Exit(1)
	}

	sub, err := client.Subscribe(c, username)
	if err != nil {
		fmt.Fprintln(os.Stderr, "subscribe failed:", err)
		os.Exit(1)
	}
	defer sub.Close()
	fmt.Println("Connected. Type 'help' for commands.")

	inputs := make(chan string)
	go func() {
		defer close(inputs)
		for scanner.Scan() {
			inputs <- scanner.Text()
		}
	}()

	app := &app{client: c, sub: sub, username: username}
	app.run(inputs)
	_ = c.Logout(username)
}

func authenticate(c *client.Client, scanner *bufio.Scanner) (string, error) {
	for {
		fmt.Print("login or register? ")
		if !scanner.Scan() {
			return "", fmt.Errorf("input closed")
		}
		mode := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if mode != "login" && mode != "register" {
			continue
		}
		fmt.Print("username: ")
		if !scanner.Scan() {
			return "", fmt.Errorf("input closed")
		}
		username := strings.TrimSpace(scanner.Text())
		fmt.Print("password: ")
		if !scanner.Scan() {
			return "", fmt.Errorf("input closed")
		}
		password := scanner.Text()

		if mode == "register" {
			if err := c.Register(username, password); err != nil {
				fmt.Println("register failed:", err)
				continue
			}
			fmt.Println("registered, you can log in now")
			continue
		}
		points, err := c.Login(username, password)
		if err != nil {
			fmt.Println("login failed:", err)
			continue
		}
		fmt.Printf("welcome %s, you have %s points\n", username, points)
		return strings.ToLower(strings.TrimSpace(username)), nil
	}
}

// app is the lobby event loop: it multiplexes stdin commands and server
// pushes, delegating to the battle state while a match is running.
type app struct {
	client   *client.Client
	sub      *client.Subscriber
	username string

	pendingChallenger string
	battle            *battleState
}

func (a *app) run(inputs <-chan string) {
	for {
		select {
		case line, ok := <-inputs:
			if !ok {
				return
			}
			if a.handleInput(strings.TrimSpace(line)) {
				return
			}
		case push, ok := <-a.sub.Pushes:
			if !ok {
				fmt.Println("connection lost")
				return
			}
			a.handlePush(push)
		}
	}
}

// handleInput returns true when the user asked to quit.
func (a *app) handleInput(line string) bool {
	if line == "" {
		return false
	}
	if a.battle != nil {
		a.battle.handleInput(line)
		if a.battle.finished {
			a.battle = nil
		}
		return false
	}

	cmd, rest, _ := strings.Cut(line, " ")
	switch strings.ToLower(cmd) {
	case "help":
		fmt.Println("commands: players, top, points, teams, stats, chat <text>, challenge <name>, accept, reject, quit")
	case "players":
		players, err := a.client.Players(a.username)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		if len(players) == 0 {
			fmt.Println("nobody else is online")
			return false
		}
		fmt.Println("online:", strings.Join(players, ", "))
	case "top":
		rows, err := a.client.Top()
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		for i, row := range rows {
			fmt.Printf("%2d. %s\n", i+1, strings.ReplaceAll(row, ":", " - "))
		}
	case "points":
		points, err := a.client.Points(a.username)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Println("points:", points)
	case "teams":
		payload, err := a.client.Teams(a.username)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Println("teams:", payload)
	case "stats":
		payload, err := a.client.PlayerStats(a.username)
		if err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Println(payload)
	case "chat":
		if err := a.sub.Chat(rest); err != nil {
			fmt.Println("error:", err)
		}
	case "challenge":
		target := strings.TrimSpace(rest)
		if target == "" {
			fmt.Println("usage: challenge <name>")
			return false
		}
		if err := a.sub.Challenge(target); err != nil {
			fmt.Println("error:", err)
			return false
		}
		fmt.Println("challenge sent to", target)
	case "accept", "reject":
		if a.pendingChallenger == "" {
			fmt.Println("no pending challenge")
			return false
		}
		decision := constants.DecisionReject
		if strings.EqualFold(cmd, "accept") {
			decision = constants.DecisionAccept
		}
		if err := a.sub.RespondChallenge(a.pendingChallenger, decision); err != nil {
			fmt.Println("error:", err)
		}
		a.pendingChallenger = ""
	case "quit", "exit":
		return true
	default:
		fmt.Println("unknown command, type 'help'")
	}
	return false
}

func (a *app) handlePush(push client.Push) {
	if a.battle != nil {
		a.battle.handlePush(push)
		if a.battle.finished {
			a.battle = nil
		}
		return
	}

	switch push.Kind {
	case constants.PushChat:
		fmt.Printf("[%s] %s\n", push.Arg(0), push.Arg(1))
	case constants.PushChallenge:
		a.pendingChallenger = push.Arg(0)
		fmt.Printf("%s challenges you! type 'accept' or 'reject'\n", a.pendingChallenger)
	case constants.PushChallengeRejected:
		fmt.Printf("%s rejected your challenge\n", push.Arg(0))
	case constants.PushBattleStart:
		challenger, responder := push.Arg(0), push.Arg(1)
		level, _ := strconv.Atoi(push.Arg(2))
		a.battle = newBattleState(a.client, a.sub, a.username, challenger, responder, level)
		fmt.Printf("battle: %s vs %s\n", challenger, responder)
		fmt.Print("pick a team name: ")
	case constants.ResponseError:
		fmt.Println("server:", push.Arg(0))
	}
}
