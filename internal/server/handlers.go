package server

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/Jaime-2616/ErronkaFinala/internal/arena"
	"github.com/Jaime-2616/ErronkaFinala/internal/constants"
	"github.com/Jaime-2616/ErronkaFinala/internal/keys"
	"github.com/Jaime-2616/ErronkaFinala/internal/logging"
	"github.com/Jaime-2616/ErronkaFinala/internal/protocol"
	"github.com/Jaime-2616/ErronkaFinala/internal/service"
	"github.com/Jaime-2616/ErronkaFinala/internal/storage"
)

// Dispatch routes a one-shot request to its handler and returns the full
// response line.
func (s *Server) Dispatch(req protocol.Request) string {
	switch req.Action {
	case constants.ActionRegister:
		return s.handleRegister(req)
	case constants.ActionLogin:
		return s.handleLogin(req)
	case constants.ActionLogout:
		return s.handleLogout(req)
	case constants.ActionGetPlayers:
		return protocol.OK(strings.Join(s.presence.List(req.Arg(0)), ","))
	case constants.ActionGetPlayersWithPoints:
		return s.handlePlayersWithPoints(req)
	case constants.ActionGetPokemons:
		return s.handleGetPokemons()
	case constants.ActionGetTeams:
		return s.handleGetTeams(req)
	case constants.ActionGetTeam:
		return s.handleGetTeam(req)
	case constants.ActionCreateTeam:
		return s.handleCreateTeam(req)
	case constants.ActionDeleteTeam:
		return s.handleDeleteTeam(req)
	case constants.ActionGetMovesByType:
		return s.handleGetMovesByType(req)
	case constants.ActionSaveTeamMoves:
		return s.handleSaveTeamMoves(req)
	case constants.ActionGetPoints:
		return s.handleGetPoints(req)
	case constants.ActionGetTop5:
		return s.handleGetTop()
	case constants.ActionGetMostPicked:
		return s.handleMostPicked()
	case constants.ActionGetPlayerStats:
		return s.handlePlayerStats(req)
	case constants.ActionChallenge:
		return s.errOrOK(s.broker.Challenge(req.Arg(0), req.Arg(1)))
	case constants.ActionChallengeResponse:
		return s.errOrOK(s.broker.RespondChallenge(req.Arg(0), req.Arg(1), req.Arg(2)))
	case constants.ActionTeamSelected:
		return s.errOrOK(s.broker.TeamSelected(req.Arg(0), req.Arg(1), req.Arg(2)))
	case constants.ActionMoveSelected:
		return s.handleMoveSelected(req)
	case constants.ActionSurrender:
		return s.handleSurrender(req)
	case constants.ActionBattleEnd:
		return s.handleBattleEnd(req)
	default:
		return protocol.Error(constants.ErrUnknownAction)
	}
}

// mapError translates sentinel errors into their wire messages. Internal
// details never reach the client.
func mapError(err error) string {
	switch {
	case errors.Is(err, storage.ErrUserExists):
		return constants.ErrUserExists
	case errors.Is(err, storage.ErrUserNotFound):
		return constants.ErrUserNotFound
	case errors.Is(err, storage.ErrTeamNotFound), errors.Is(err, storage.ErrTeamExists):
		return err.Error()
	case errors.Is(err, service.ErrWrongPassword):
		return constants.ErrWrongPassword
	case errors.Is(err, service.ErrInvalidUsername), errors.Is(err, service.ErrInvalidPassword):
		return constants.ErrInvalidCredentials
	case errors.Is(err, arena.ErrPlayerUnavailable):
		return constants.ErrPlayerUnavailable
	case errors.Is(err, arena.ErrInvalidSlot):
		return constants.ErrInvalidSlot
	case errors.Is(err, arena.ErrInvalidWinner):
		return constants.ErrInvalidWinner
	case errors.Is(err, arena.ErrAlreadySettled):
		return constants.ErrMatchAlreadySettled
	case errors.Is(err, arena.ErrPlayerNotInMatch):
		return constants.ErrPlayerNotInMatch
	default:
		logging.Error("request failed", err, nil)
		return constants.ErrInvalidRequest
	}
}

func (s *Server) errOrOK(err error) string {
	if err != nil {
		return protocol.Error(mapError(err))
	}
	return protocol.OK()
}

func (s *Server) jsonOK(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return protocol.Error(mapError(err))
	}
	return protocol.OK(string(b))
}

func (s *Server) handleRegister(req protocol.Request) string {
	return s.errOrOK(service.Register(s.repo, req.Arg(0), req.Arg(1)))
}

func (s *Server) handleLogin(req protocol.Request) string {
	u, err := service.Login(s.repo, req.Arg(0), req.Arg(1))
	if err != nil {
		return protocol.Error(mapError(err))
	}
	s.presence.Mark(u.Username)
	logging.Info("player logged in", logging.Fields{"username": u.Username})
	return protocol.OK(strconv.Itoa(u.Points))
}

func (s *Server) handleLogout(req protocol.Request) string {
	username := keys.Normalize(req.Arg(0))
	if sess, ok := s.registry.Lookup(username); ok {
		s.registry.Unregister(sess)
	}
	s.presence.Clear(username)
	s.broker.DropPlayer(username)
	logging.Info("player logged out", logging.Fields{"username": username})
	return protocol.OK()
}

func (s *Server) handlePlayersWithPoints(req protocol.Request) string {
	online := s.presence.List(req.Arg(0))
	points, err := s.repo.PointsFor(online)
	if err != nil {
		return protocol.Error(mapError(err))
	}
	rows := make([]string, len(points))
	for i, p := range points {
		rows[i] = p.Username + ":" + strconv.Itoa(p.Points)
	}
	return protocol.OK(strings.Join(rows, ","))
}

func (s *Server) handleGetPokemons() string {
	rows, err := s.repo.GetPokemons()
	if err != nil {
		return protocol.Error(mapError(err))
	}
	return s.jsonOK(rows)
}

func (s *Server) handleGetTeams(req protocol.Request) string {
	names, err := s.repo.GetTeamNames(req.Arg(0))
	if err != nil {
		return protocol.Error(mapError(err))
	}
	return s.jsonOK(names)
}

func (s *Server) handleGetTeam(req protocol.Request) string {
	detail, err := s.repo.GetTeamDetail(req.Arg(0))
	if err != nil {
		return protocol.Error(mapError(err))
	}
	return s.jsonOK(detail)
}

func (s *Server) handleCreateTeam(req protocol.Request) string {
	var dexIDs []int
	if err := json.Unmarshal([]byte(req.Arg(2)), &dexIDs); err != nil {
		return protocol.Error(constants.ErrInvalidRequest)
	}
	if len(dexIDs) == 0 || len(dexIDs) > 6 {
		return protocol.Error(constants.ErrInvalidRequest)
	}
	return s.errOrOK(s.repo.CreateTeam(req.Arg(0), req.Arg(1), dexIDs))
}

func (s *Server) handleDeleteTeam(req protocol.Request) string {
	return s.errOrOK(s.repo.DeleteTeam(req.Arg(0), req.Arg(1)))
}

func (s *Server) handleGetMovesByType(req protocol.Request) string {
	var types []string
	if csv := strings.TrimSpace(req.Arg(0)); csv != "" {
		for _, t := range strings.Split(csv, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}
	rows, err := s.repo.GetMovesByTypes(types)
	if err != nil {
		return protocol.Error(mapError(err))
	}
	return s.jsonOK(rows)
}

// saveTeamMovesPayload is the JSON body of save_team_moves.
type saveTeamMovesPayload struct {
	Pokemons []storage.MoveAssignment `json:"pokemons"`
}

func (s *Server) handleSaveTeamMoves(req protocol.Request) string {
	var payload saveTeamMovesPayload
	if err := json.Unmarshal([]byte(req.Arg(1)), &payload); err != nil {
		return protocol.Error(constants.ErrInvalidRequest)
	}
	return s.errOrOK(s.repo.SaveTeamMoves(req.Arg(0), payload.Pokemons))
}

func (s *Server) handleGetPoints(req protocol.Request) string {
	pts, err := s.repo.GetPoints(req.Arg(0))
	if err != nil {
		return protocol.Error(mapError(err))
	}
	return protocol.OK(strconv.Itoa(pts))
}

func (s *Server) handleGetTop() string {
	top, err := s.repo.GetTopPlayers(10)
	if err != nil {
		return protocol.Error(mapError(err))
	}
	rows := make([]string, len(top))
	for i, p := range top {
		rows[i] = p.Username + ":" + strconv.Itoa(p.Points)
	}
	return protocol.OK(strings.Join(rows, ","))
}

func (s *Server) handleMostPicked() string {
	pick, err := s.repo.GetMostPickedPokemon()
	if err != nil {
		return protocol.Error(mapError(err))
	}
	return protocol.OK(pick.Name + ":" + strconv.Itoa(pick.Count))
}

func (s *Server) handlePlayerStats(req protocol.Request) string {
	stats, err := s.repo.GetPlayerStats(req.Arg(0))
	if err != nil {
		return protocol.Error(mapError(err))
	}
	return s.jsonOK(stats)
}

func (s *Server) handleMoveSelected(req protocol.Request) string {
	slot, err := strconv.Atoi(req.Arg(2))
	if err != nil {
		return protocol.Error(constants.ErrInvalidSlot)
	}
	return s.errOrOK(s.broker.MoveSelected(req.Arg(0), req.Arg(1), slot))
}

func (s *Server) handleSurrender(req protocol.Request) string {
	aliveFrom, _ := strconv.Atoi(req.Arg(2))
	aliveTo, _ := strconv.Atoi(req.Arg(3))
	return s.errOrOK(s.broker.Surrender(req.Arg(0), req.Arg(1), aliveFrom, aliveTo))
}

func (s *Server) handleBattleEnd(req protocol.Request) string {
	alive1, _ := strconv.Atoi(req.Arg(3))
	alive2, _ := strconv.Atoi(req.Arg(4))
	return s.errOrOK(s.broker.BattleEnd(req.Arg(0), req.Arg(1), req.Arg(2), alive1, alive2))
}
