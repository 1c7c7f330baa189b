package util

import (
	"crypto/tls"
	"fmt"
	"os"

	"github.com/wrale/wrale-scheduler/internal/wschedctl/client"
	"github.com/wrale/wrale-scheduler/internal/wschedctl/config"
)

// Environment overrides for the active context
const (
	EnvServer = "WSCHED_API_URL"
	EnvToken  = "WSCHED_AUTH_TOKEN"
)

// Overrides replace context settings, typically from flags
type Overrides struct {
	Server string
	Token  string
}

// GetClient creates an API client from overrides, the environment and the
// current context, in that order of precedence
func GetClient(cfg *config.Config, o Overrides) (*client.Client, error) {
	ctx := &config.Context{}
	if current, err := cfg.GetCurrentContext(); err == nil {
		ctx = current
	}

	server := firstNonEmpty(o.Server, os.Getenv(EnvServer), ctx.Server)
	if server == "" {
		return nil, fmt.Errorf("no API server configured - set %s or run 'wschedctl config set-context'", EnvServer)
	}
	token := firstNonEmpty(o.Token, os.Getenv(EnvToken), ctx.Token)
	if token == "" {
		return nil, fmt.Errorf("no auth token configured - set %s or add --token to the context", EnvToken)
	}

	opts := []client.ClientOption{client.WithToken(token)}
	if ctx.InsecureSkipVerify {
		opts = append(opts, client.WithTLSConfig(&tls.Config{InsecureSkipVerify: true})) //nolint:gosec // opt-in per context
	}

	c, err := client.NewClient(server, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return c, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
