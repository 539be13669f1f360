package cmd

import (
	"fmt"
	"os"

	"github.com/prisma-migrate/engine/cli"
	"github.com/prisma-migrate/engine/internal/config"
	"github.com/prisma-migrate/engine/internal/logger"
)

var (
	configFile string
	verbose    bool
)

var app *cli.App

// Execute runs the CLI application
func Execute() error {
	app = cli.NewApp(
		"prisma-migrate",
		"0.1.0",
		"Ledgered up/down migration runner for Prisma-style projects",
	)

	app.AddGlobalFlag(&cli.Flag{
		Name:  "config",
		Short: "c",
		Usage: "Path to configuration file (default: prisma.conf)",
		Value: &configFile,
	})
	app.AddGlobalFlag(&cli.Flag{
		Name:  "verbose",
		Short: "v",
		Usage: "Verbose mode (show detailed logs)",
		Value: &verbose,
	})

	app.AddCommand(migrateCmd)

	return app.Execute()
}

// getConfigPath returns the path to the configuration file
func getConfigPath() string {
	if configFile != "" {
		return configFile
	}
	if _, err := os.Stat("prisma.conf"); err == nil {
		return "prisma.conf"
	}
	return ""
}

// checkProjectRoot checks if we are in the root of a Prisma project
func checkProjectRoot() error {
	if getConfigPath() == "" {
		return fmt.Errorf("prisma.conf not found. Run 'prisma init' to initialize the project")
	}
	return nil
}

// loadConfig loads the configuration from prisma.conf
func loadConfig() (*config.Config, error) {
	configPath := getConfigPath()
	if configPath == "" {
		return nil, fmt.Errorf("prisma.conf not found")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if len(cfg.Log) > 0 {
		logger.SetLogLevels(cfg.Log)
	}

	return cfg, nil
}
