package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

const envVarPrefix = "SECTORFS"

// config holds the environment-sourced defaults for the mkfs CLI. Flags
// passed on the command line always win over these; config only fills in
// what the caller didn't specify.
type config struct {
	Disk       string `envconfig:"DISK"`
	InodeCount int    `envconfig:"INODE_COUNT" default:"1024"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
}

func loadConfig() (*config, error) {
	var c config
	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}
	return &c, nil
}
