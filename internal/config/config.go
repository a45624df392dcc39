package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"github.com/DoyleJ11/batalla-naval/internal/engine"
)

var ErrInvalidRoster = errors.New("invalid roster")

const (
	DefaultAddr     = ":8080"
	DefaultBasePath = "/batallaNaval"
	DefaultLobby    = "NAVAL1"
)

type Config struct {
	Addr         string
	BasePath     string
	DefaultLobby string
	LogLevel     string
	Dev          bool
	DatabaseURL  string
	RosterFile   string
	Roster       []engine.Team
}

type rosterFile struct {
	Teams []string `yaml:"teams"`
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Config{
		Addr:         env("BATALLA_ADDR", DefaultAddr),
		BasePath:     env("BATALLA_BASE_PATH", DefaultBasePath),
		DefaultLobby: env("BATALLA_DEFAULT_LOBBY", DefaultLobby),
		LogLevel:     env("BATALLA_LOG_LEVEL", "info"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RosterFile:   os.Getenv("BATALLA_ROSTER_FILE"),
	}

	if raw := os.Getenv("BATALLA_DEV"); raw != "" {
		dev, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, fmt.Errorf("config: BATALLA_DEV: %w", err)
		}
		cfg.Dev = dev
	}

	return cfg, nil
}

// Finish normalizes the base path and resolves the roster. Call it after
// flags have been applied.
func (c *Config) Finish() error {
	c.BasePath = NormalizeBasePath(c.BasePath)
	c.DefaultLobby = strings.ToUpper(strings.TrimSpace(c.DefaultLobby))

	if c.RosterFile == "" {
		c.Roster = append([]engine.Team(nil), engine.DefaultRoster...)
		return nil
	}
	roster, err := LoadRoster(c.RosterFile)
	if err != nil {
		return err
	}
	c.Roster = roster
	return nil
}

func LoadRoster(path string) ([]engine.Team, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read roster: %w", err)
	}
	return ParseRoster(data)
}

// ParseRoster decodes a YAML roster (`teams: [...]`) of exactly four unique
// names.
func ParseRoster(data []byte) ([]engine.Team, error) {
	var rf rosterFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("config: parse roster: %w", err)
	}
	if len(rf.Teams) != engine.RosterSize {
		return nil, fmt.Errorf("%w: want %d teams, got %d", ErrInvalidRoster, engine.RosterSize, len(rf.Teams))
	}

	seen := make(map[string]bool, len(rf.Teams))
	roster := make([]engine.Team, 0, len(rf.Teams))
	for _, name := range rf.Teams {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty team name", ErrInvalidRoster)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate team %q", ErrInvalidRoster, name)
		}
		seen[name] = true
		roster = append(roster, engine.Team(name))
	}
	return roster, nil
}

// NormalizeBasePath returns "" for the root or "/prefix" without a trailing
// slash.
func NormalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
