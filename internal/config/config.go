package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Jaime-2616/ErronkaFinala/internal/constants"
)

type rawConfig struct {
	Server *struct {
		Address     string `json:"address"`
		HTTPAddress string `json:"http_address"`
	} `json:"server"`
	Database *struct {
		Path string `json:"path"`
	} `json:"database"`
	Seed *struct {
		PokedexPath string `json:"pokedex_path"`
		MovesPath   string `json:"moves_path"`
	} `json:"seed"`
	// Timeout applied to reads of a single request line and to each push
	// write, in seconds. Subscribe connections are exempt from the read
	// deadline since they stay idle until a push arrives.
	ReadTimeoutSeconds  int `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int `json:"write_timeout_seconds"`
	// Chat flood control: messages per second allowed per subscriber,
	// with a small burst.
	ChatRatePerSecond float64 `json:"chat_rate_per_second"`
	ChatBurst         int     `json:"chat_burst"`
	// Battle level used by the damage formula.
	BattleLevel int `json:"battle_level"`
}

// LoadedConfig contains the resolved runtime settings for the server.
type LoadedConfig struct {
	ServerAddress string
	HTTPAddress   string
	DatabasePath  string
	PokedexPath   string
	MovesPath     string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	ChatRate      float64
	ChatBurst     int
	BattleLevel   int
}

// LoadConfig reads the configuration file at path and fills defaults for
// any omitted setting. The file itself is optional: an empty path yields a
// fully defaulted configuration.
func LoadConfig(path string) (*LoadedConfig, error) {
	var rc rawConfig
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(b, &rc); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	lc := &LoadedConfig{
		ServerAddress: ":5000",
		HTTPAddress:   ":8080",
		DatabasePath:  "erronka.db",
		PokedexPath:   "pokedex.json",
		MovesPath:     "moves.json",
		ReadTimeout:   30 * time.Second,
		WriteTimeout:  10 * time.Second,
		ChatRate:      5,
		ChatBurst:     10,
		BattleLevel:   50,
	}

	if rc.Server != nil {
		if a := strings.TrimSpace(rc.Server.Address); a != "" {
			lc.ServerAddress = a
		}
		if a := strings.TrimSpace(rc.Server.HTTPAddress); a != "" {
			lc.HTTPAddress = a
		}
	}
	if rc.Database != nil && strings.TrimSpace(rc.Database.Path) != "" {
		lc.DatabasePath = strings.TrimSpace(rc.Database.Path)
	}
	if rc.Seed != nil {
		if p := strings.TrimSpace(rc.Seed.PokedexPath); p != "" {
			lc.PokedexPath = p
		}
		if p := strings.TrimSpace(rc.Seed.MovesPath); p != "" {
			lc.MovesPath = p
		}
	}
	if rc.ReadTimeoutSeconds > 0 {
		lc.ReadTimeout = time.Duration(rc.ReadTimeoutSeconds) * time.Second
	}
	if rc.WriteTimeoutSeconds > 0 {
		lc.WriteTimeout = time.Duration(rc.WriteTimeoutSeconds) * time.Second
	}
	if rc.ChatRatePerSecond > 0 {
		lc.ChatRate = rc.ChatRatePerSecond
	}
	if rc.ChatBurst > 0 {
		lc.ChatBurst = rc.ChatBurst
	}
	if rc.BattleLevel > 0 {
		lc.BattleLevel = rc.BattleLevel
	}

	// The database path can be overridden by environment for container
	// deployments where the config file is baked into the image.
	if env := strings.TrimSpace(os.Getenv(constants.EnvDBPath)); env != "" {
		lc.DatabasePath = env
	}

	return lc, nil
}
