package main

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/config"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/logging"
	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services/invenio"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolvedPath, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolvedPath
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// newClient loads credentials and builds the repository client. A .env file
// in the working directory is honored but never required; the token itself
// is only ever read from the environment.
func (c *commandContext) newClient() (*invenio.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	_ = godotenv.Load()

	creds, err := invenio.CredentialsFromEnv(cfg.API.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.API.RequestTimeout) * time.Second
	return invenio.New(creds, timeout, nil), nil
}
