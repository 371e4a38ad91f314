package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// CHAT_URL is the websocket endpoint of a running server, e.g. ws://localhost:5000/ws
	ChatURL string `envconfig:"CHAT_URL"`
	// HTTP_URL is the REST base of the same server, e.g. http://localhost:5000
	HTTPURL string `envconfig:"HTTP_URL"`
	// AUTH_SECRET must match the server's when it verifies tokens
	AuthSecret string `envconfig:"AUTH_SECRET"`
	// E2E_DEBUG_JSON dumps every frame read from the server
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
