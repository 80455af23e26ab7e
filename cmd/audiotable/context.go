package main

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"audiotable/internal/config"
	"audiotable/internal/database"
	"audiotable/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.AppConfig
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{
		configFlag: configFlag,
	}
}

// ensureConfig loads the configuration once and sets up the global logger
func (c *commandContext) ensureConfig() (*config.AppConfig, error) {
	c.configOnce.Do(func() {
		loader := config.NewConfigLoader()
		if c.configFlag != nil {
			if path := strings.TrimSpace(*c.configFlag); path != "" {
				loader.SetConfigFile(path)
			}
		}

		cfg, err := loader.Load()
		if err != nil {
			c.configErr = err
			return
		}

		logging.InitGlobalLogger(logging.LogLevel(cfg.Logging.Level), cfg.Logging.Format)
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() *zerolog.Logger {
	return logging.GetGlobalLogger().Zerolog()
}

// openDatabase connects, migrates the schema and seeds the admin account
func (c *commandContext) openDatabase() (*database.DatabaseManager, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	dbManager, err := database.NewDatabaseManager(&cfg.Database, c.logger())
	if err != nil {
		return nil, err
	}

	if err := database.NewMigrationManager(dbManager.GetGormDB(), c.logger()).Migrate(); err != nil {
		dbManager.Close()
		return nil, err
	}

	if _, err := database.SeedAdmin(dbManager.GetGormDB(), cfg.Admin, c.logger()); err != nil {
		dbManager.Close()
		return nil, err
	}

	return dbManager, nil
}
