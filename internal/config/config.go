// Package config loads the environment-variable-backed configuration:
// connection details for the context graph and the Home Assistant
// plugin. CLI flags (port, stdio, quiet, log-level, mcp-server-path)
// are owned by each binary's cobra command and are not part of this
// package.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Neo4jConfig holds the context graph connection parameters.
type Neo4jConfig struct {
	URI      string `koanf:"uri"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
}

// HomeAssistantConfig holds the Home Assistant plugin's target and
// credential.
type HomeAssistantConfig struct {
	URL   string `koanf:"url"`
	Token string `koanf:"token"`
}

// ServerConfig is the MCP server's environment-derived configuration.
type ServerConfig struct {
	Neo4j         Neo4jConfig
	HomeAssistant HomeAssistantConfig
}

// LoadServerConfig overlays NEO4J_* and HOMEASSISTANT_* environment
// variables onto built-in defaults. NEO4J_PASSWORD has no default and
// its absence is a config error.
func LoadServerConfig() (*ServerConfig, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", envKeyTransformer), nil); err != nil {
		return nil, fmt.Errorf("config: load environment: %w", err)
	}

	cfg := &ServerConfig{
		Neo4j: Neo4jConfig{
			URI:      orDefault(k.String("neo4j.uri"), "bolt://neo4j:7687"),
			User:     orDefault(k.String("neo4j.user"), "neo4j"),
			Password: k.String("neo4j.password"),
		},
		HomeAssistant: HomeAssistantConfig{
			URL:   orDefault(k.String("homeassistant.url"), "http://localhost:8123"),
			Token: k.String("homeassistant.token"),
		},
	}

	if cfg.Neo4j.Password == "" {
		return nil, fmt.Errorf("config: NEO4J_PASSWORD is required")
	}
	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// envKeyTransformer turns NEO4J_URI into neo4j.uri and
// HOMEASSISTANT_TOKEN into homeassistant.token: lowercase, split on
// the first underscore only (so a key such as NEO4J_MAX_POOL would
// become neo4j.max_pool, not neo4j.max.pool).
func envKeyTransformer(s string) string {
	lower := strings.ToLower(s)
	idx := strings.Index(lower, "_")
	if idx < 0 {
		return lower
	}
	return lower[:idx] + "." + lower[idx+1:]
}
