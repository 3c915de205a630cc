package constants

// Centralized constants for the wire protocol, env keys and log fields.
const (
	// Environment variable keys
	EnvConfigPath = "ERRONKA_CONFIG"
	EnvDBPath     = "ERRONKA_DB"

	// Client -> server actions (first field of a request line)
	ActionRegister             = "register"
	ActionLogin                = "login"
	ActionLogout               = "logout"
	ActionSubscribe            = "subscribe"
	ActionChat                 = "chat"
	ActionGetPlayers           = "get_players"
	ActionGetPlayersWithPoints = "get_players_with_points"
	ActionGetPokemons          = "get_pokemons"
	ActionGetTeams             = "get_teams"
	ActionGetTeam              = "get_team"
	ActionCreateTeam           = "create_team"
	ActionDeleteTeam           = "delete_team"
	ActionGetMovesByType       = "get_moves_by_type"
	ActionSaveTeamMoves        = "save_team_moves"
	ActionGetPoints            = "get_points"
	ActionGetTop5              = "get_top5"
	ActionGetMostPicked        = "get_most_picked_pokemon_global"
	ActionGetPlayerStats       = "get_player_stats"
	ActionChallenge            = "challenge"
	ActionChallengeResponse    = "challenge_response"
	ActionTeamSelected         = "team_selected"
	ActionMoveSelected         = "move_selected"
	ActionSurrender            = "surrender"
	ActionBattleEnd            = "battle_end"

	// Server -> client push message types (first field of a push line)
	PushChat              = "MSG"
	PushChallenge         = "CHALLENGE"
	PushBattleStart       = "BATTLE_START"
	PushChallengeRejected = "CHALLENGE_REJECTED"
	PushRivalTeam         = "RIVAL_TEAM"
	PushSurrender         = "SURRENDER"
	PushRivalMove         = "RIVAL_MOVE"
	PushBattleEnd         = "BATTLE_END"

	// Response prefixes
	ResponseOK    = "OK"
	ResponseError = "ERROR"

	// Challenge decisions
	DecisionAccept = "ACCEPT"
	DecisionReject = "REJECT"

	// Battle end reasons persisted with match records
	EndReasonNormal    = "NORMAL"
	EndReasonSurrender = "SURRENDER"

	// Error strings sent back over the wire
	ErrInvalidRequest      = "invalid request"
	ErrUnknownAction       = "unknown action"
	ErrInvalidCredentials  = "invalid username or password"
	ErrUserExists          = "user already exists"
	ErrUserNotFound        = "user not found"
	ErrWrongPassword       = "wrong password"
	ErrNotSubscribed       = "not subscribed for chat"
	ErrPlayerUnavailable   = "player is not available"
	ErrInvalidSlot         = "invalid move slot"
	ErrInvalidWinner       = "winner does not match the players"
	ErrMatchAlreadySettled = "match already settled"
	ErrPlayerNotInMatch    = "player does not belong to this match"
	ErrTeamNotFound        = "team not found"
	ErrChatTooFast         = "chat rate limit exceeded"

	// Log field keys
	LogFieldAddr     = "addr"
	LogFieldUsername = "username"
	LogFieldSession  = "session_id"
	LogFieldAction   = "action"
	LogFieldMatchKey = "match_key"
)

// Routes used by the HTTP status surface
const (
	RouteAPIPrefix   = "/api"
	RouteHealth      = "/health"
	RouteLeaderboard = "/leaderboard"
	RouteOnline      = "/online"
	RoutePlayerStats = "/player-stats"
	RouteWebsocket   = "/ws"
)
