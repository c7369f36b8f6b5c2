package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateConsensus(); err != nil {
		return err
	}
	if err := c.validateMaster(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.StagingDir == "" {
		return errors.New("paths.staging_dir must be set")
	}
	if c.Paths.LibraryDir == "" {
		return errors.New("paths.library_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateConsensus() error {
	if c.Consensus.AgreeThreshold < 0 || c.Consensus.AgreeThreshold > 100 {
		return errors.New("consensus.agree_threshold must be between 0 and 100")
	}
	return nil
}

func (c *Config) validateMaster() error {
	if c.Master.MinSeconds >= c.Master.MaxSeconds {
		return fmt.Errorf("master.min_seconds (%d) must be below master.max_seconds (%d)",
			c.Master.MinSeconds, c.Master.MaxSeconds)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
