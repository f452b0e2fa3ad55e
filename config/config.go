// Package config loads the swarm host configuration.
//
// Values are layered, later sources overriding earlier ones:
//
//  1. Built-in defaults (Default)
//  2. Configuration files, JSON or YAML by extension, in the order given
//  3. Environment variables prefixed with SWARM_, where a double underscore
//     separates nesting levels (SWARM_SERVER__ADDRESS -> server.address)
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hupe1980/agentswarm/agent"
	"github.com/hupe1980/agentswarm/auth"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "SWARM_"

// Config is the complete host configuration.
type Config struct {
	Server ServerConfig `koanf:"server"`
	Log    LogConfig    `koanf:"log"`
	Auth   AuthConfig   `koanf:"auth"`

	LLMAgents    []agent.ModelAgentConfig  `koanf:"llm_agents"`
	SearchAgents []agent.SearchAgentConfig `koanf:"search_agents"`
	RemoteAgents []RemoteAgentConfig       `koanf:"remote_agents"`
	Workflows    []WorkflowConfig          `koanf:"workflows"`

	// AgentFiles lists JSON files holding one LLM agent definition each.
	AgentFiles []string `koanf:"agent_files"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Address      string        `koanf:"address"`
	UIDir        string        `koanf:"ui_dir"`
	ResourcesDir string        `koanf:"resources_dir"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	MaxBodySize  int64         `koanf:"max_body_size"`
	EnableA2A    bool          `koanf:"enable_a2a"`
}

// LogConfig configures logging. An empty Dir logs to stdout only.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Dir    string `koanf:"dir"`
	Prefix string `koanf:"prefix"`
}

// ProtectedAction restricts an action id to a set of roles.
type ProtectedAction struct {
	Action string   `koanf:"action"`
	Roles  []string `koanf:"roles"`
}

// AuthConfig configures the optional auth agent.
type AuthConfig struct {
	Enabled           bool              `koanf:"enabled"`
	ID                string            `koanf:"id"`
	ServerSecret      string            `koanf:"server_secret"`
	TokenValidityDays int               `koanf:"token_validity_days"`
	DBPath            string            `koanf:"db_path"`
	ProtectedActions  []ProtectedAction `koanf:"protected_actions"`
}

// AgentConfig converts to the auth package configuration.
func (a AuthConfig) AgentConfig() auth.Config {
	protected := make(map[string][]string, len(a.ProtectedActions))
	for _, pa := range a.ProtectedActions {
		protected[pa.Action] = append(protected[pa.Action], pa.Roles...)
	}
	return auth.Config{
		ServerSecret:      a.ServerSecret,
		TokenValidityDays: a.TokenValidityDays,
		ProtectedActions:  protected,
		DBPath:            a.DBPath,
	}
}

// RemoteAgentConfig registers an agent living behind an A2A endpoint.
type RemoteAgentConfig struct {
	ID  string `koanf:"id"`
	URL string `koanf:"url"`
}

// WorkflowConfig defines a composite agent over other actions.
type WorkflowConfig struct {
	ID      string        `koanf:"id"`
	Kind    string        `koanf:"kind"` // sequence or parallel
	Steps   []string      `koanf:"steps"`
	Timeout time.Duration `koanf:"timeout"`
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address:      ":8000",
			UIDir:        "ui",
			ResourcesDir: "resources",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
			MaxBodySize:  10 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
			Prefix: "swarm",
		},
		Auth: AuthConfig{
			ID:                "Auth",
			TokenValidityDays: 1,
			DBPath:            "users.json",
		},
	}
}

// Load builds a Config from defaults, the given files and the environment.
func Load(paths ...string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	for _, path := range paths {
		if path == "" {
			continue
		}
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	for _, path := range cfg.AgentFiles {
		var def agent.ModelAgentConfig
		if err := LoadAgentFile(path, &def); err != nil {
			return nil, err
		}
		cfg.LLMAgents = append(cfg.LLMAgents, def)
	}

	return &cfg, nil
}

// LoadAgentFile decodes a single JSON or YAML agent definition into v using
// its json struct tags.
func LoadAgentFile(path string, v any) error {
	parser, err := parserFor(path)
	if err != nil {
		return err
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return fmt.Errorf("load agent file %s: %w", path, err)
	}
	if err := k.UnmarshalWithConf("", v, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return fmt.Errorf("decode agent file %s: %w", path, err)
	}
	return nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	var errs []error
	seen := map[string]bool{}

	claim := func(kind, id string) {
		switch {
		case id == "":
			errs = append(errs, fmt.Errorf("%s: id is required", kind))
		case strings.Contains(id, "."):
			errs = append(errs, fmt.Errorf("%s %q: id must not contain '.'", kind, id))
		case seen[id]:
			errs = append(errs, fmt.Errorf("%s %q: duplicate agent id", kind, id))
		}
		seen[id] = true
	}

	if c.Auth.Enabled {
		claim("auth agent", c.Auth.ID)
		if c.Auth.ServerSecret == "" {
			errs = append(errs, errors.New("auth agent: server_secret is required"))
		}
	}
	for _, a := range c.LLMAgents {
		claim("llm agent", a.ID)
		if len(a.Operations) == 0 {
			errs = append(errs, fmt.Errorf("llm agent %q: no operations", a.ID))
		}
		switch a.Provider {
		case "", "openai", "anthropic":
		default:
			errs = append(errs, fmt.Errorf("llm agent %q: unknown provider %q", a.ID, a.Provider))
		}
	}
	for _, a := range c.SearchAgents {
		claim("search agent", a.ID)
		if a.Endpoint == "" {
			errs = append(errs, fmt.Errorf("search agent %q: endpoint is required", a.ID))
		}
	}
	for _, a := range c.RemoteAgents {
		claim("remote agent", a.ID)
		if a.URL == "" {
			errs = append(errs, fmt.Errorf("remote agent %q: url is required", a.ID))
		}
	}
	for _, w := range c.Workflows {
		claim("workflow", w.ID)
		if w.Kind != "sequence" && w.Kind != "parallel" {
			errs = append(errs, fmt.Errorf("workflow %q: kind must be sequence or parallel", w.ID))
		}
		if len(w.Steps) == 0 {
			errs = append(errs, fmt.Errorf("workflow %q: no steps", w.ID))
		}
	}

	return errors.Join(errs...)
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return json.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
}

// envKey maps SWARM_SERVER__ADDRESS to server.address.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}
