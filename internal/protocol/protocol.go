package protocol

// Package protocol implements the line codec shared by the server and the
// client. Every message is one UTF-8 line: fields joined by '|' and
// terminated by '\n'. Requests start with an action name, responses with
// OK or ERROR, pushes with an upper-case message type.

import (
	"errors"
	"strings"

	"github.com/Jaime-2616/ErronkaFinala/internal/constants"
)

var ErrEmptyLine = errors.New("empty request line")

// Request is a parsed client line.
type Request struct {
	Action string
	Args   []string
}

// ParseRequest splits a raw line into action and arguments. The line must
// already be stripped of its trailing newline.
func ParseRequest(line string) (Request, error) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return Request{}, ErrEmptyLine
	}
	parts := strings.Split(line, "|")
	return Request{Action: parts[0], Args: parts[1:]}, nil
}

// Arg returns the i-th argument or "" when absent.
func (r Request) Arg(i int) string {
	if i < 0 || i >= len(r.Args) {
		return ""
	}
	return r.Args[i]
}

// sanitize strips characters that would break the framing. Field content
// never legitimately contains separators or newlines.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "|", "/")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

func join(fields []string) string {
	clean := make([]string, len(fields))
	for i, f := range fields {
		clean[i] = sanitize(f)
	}
	return strings.Join(clean, "|")
}

// OK formats a success response. With no payload it is just "OK\n".
func OK(fields ...string) string {
	if len(fields) == 0 {
		return constants.ResponseOK + "\n"
	}
	return constants.ResponseOK + "|" + join(fields) + "\n"
}

// Error formats an error response line.
func Error(msg string) string {
	return constants.ResponseError + "|" + sanitize(msg) + "\n"
}

// Push formats a server push line of the given kind.
func Push(kind string, fields ...string) string {
	if len(fields) == 0 {
		return kind + "\n"
	}
	return kind + "|" + join(fields) + "\n"
}

// IsPush reports whether a received line is a push rather than a request
// response. Used by clients multiplexing a subscribe connection.
func IsPush(line string) bool {
	head, _, _ := strings.Cut(strings.TrimRight(line, "\r\n"), "|")
	switch head {
	case constants.PushChat, constants.PushChallenge, constants.PushBattleStart,
		constants.PushChallengeRejected, constants.PushRivalTeam,
		constants.PushSurrender, constants.PushRivalMove, constants.PushBattleEnd:
		return true
	}
	return false
}
