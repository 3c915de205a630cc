package client

// Package client implements the player side of the relay protocol:
// one-shot requests, the persistent push subscription, team loading and
// the peer turn coordinator that drives the battle engine.

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/Jaime-2616/ErronkaFinala/internal/constants"
)

// ServerError is the ERROR| message returned by the server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string { return e.Message }

var errBadResponse = errors.New("malformed server response")

// Client issues one-shot requests: one connection per request, one line
// each way.
type Client struct {
	Addr    string
	Timeout time.Duration
}

func New(addr string) *Client {
	return &Client{Addr: addr, Timeout: 10 * time.Second}
}

// Do sends one request line and returns the OK payload (empty when the
// response carries none). A ServerError is returned for ERROR| responses.
func (c *Client) Do(action string, args ...string) (string, error) {
	conn, err := net.DialTimeout("tcp", c.Addr, c.Timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(c.Timeout))

	line := action
	if len(args) > 0 {
		line += "|" + strings.Join(args, "|")
	}
	if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
		return "", err
	}

	resp, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", err
	}
	return ParseResponse(resp)
}

// ParseResponse splits an OK|/ERROR| line into its payload or error.
func ParseResponse(line string) (string, error) {
	line = strings.TrimRight(line, "\r\n")
	switch {
	case line == constants.ResponseOK:
		return "", nil
	case strings.HasPrefix(line, constants.ResponseOK+"|"):
		return line[len(constants.ResponseOK)+1:], nil
	case strings.HasPrefix(line, constants.ResponseError+"|"):
		return "", &ServerError{Message: line[len(constants.ResponseError)+1:]}
	default:
		return "", errBadResponse
	}
}

func (c *Client) Register(username, password string) error {
	_, err := c.Do(constants.ActionRegister, username, password)
	return err
}

// Login returns the player's current points on success.
func (c *Client) Login(username, password string) (string, error) {
	return c.Do(constants.ActionLogin, username, password)
}

func (c *Client) Logout(username string) error {
	_, err := c.Do(constants.ActionLogout, username)
	return err
}

// Players lists online usernames, excluding the requester.
func (c *Client) Players(username string) ([]string, error) {
	payload, err := c.Do(constants.ActionGetPlayers, username)
	if err != nil {
		return nil, err
	}
	if payload == "" {
		return nil, nil
	}
	return strings.Split(payload, ","), nil
}

func (c *Client) Challenge(from, to string) error {
	_, err := c.Do(constants.ActionChallenge, from, to)
	return err
}

func (c *Client) RespondChallenge(responder, challenger, decision string) error {
	_, err := c.Do(constants.ActionChallengeResponse, responder, challenger, decision)
	return err
}

func (c *Client) TeamSelected(from, rival, teamName string) error {
	_, err := c.Do(constants.ActionTeamSelected, from, rival, teamName)
	return err
}

func (c *Client) MoveSelected(from, rival string, slot int) error {
	_, err := c.Do(constants.ActionMoveSelected, from, rival, fmt.Sprintf("%d", slot))
	return err
}

func (c *Client) Surrender(from, rival string, aliveFrom, aliveTo int) error {
	_, err := c.Do(constants.ActionSurrender, from, rival,
		fmt.Sprintf("%d", aliveFrom), fmt.Sprintf("%d", aliveTo))
	return err
}

func (c *Client) BattleEnd(winner, p1, p2 string, alive1, alive2 int) error {
	_, err := c.Do(constants.ActionBattleEnd, winner, p1, p2,
		fmt.Sprintf("%d", alive1), fmt.Sprintf("%d", alive2))
	return err
}

func (c *Client) Points(username string) (string, error) {
	return c.Do(constants.ActionGetPoints, username)
}

// Top returns the leaderboard as "user:points" rows.
func (c *Client) Top() ([]string, error) {
	payload, err := c.Do(constants.ActionGetTop5)
	if err != nil {
		return nil, err
	}
	if payload == "" {
		return nil, nil
	}
	return strings.Split(payload, ","), nil
}

func (c *Client) Teams(username string) (string, error) {
	return c.Do(constants.ActionGetTeams, username)
}

func (c *Client) PlayerStats(username string) (string, error) {
	return c.Do(constants.ActionGetPlayerStats, username)
}
