package config

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateReport(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateScan() error {
	if len(c.Scan.Extensions) == 0 {
		return errors.New("scan.extensions must list at least one extension")
	}
	if filepath.Base(c.Scan.ManifestName) != c.Scan.ManifestName {
		return fmt.Errorf("scan.manifest_name must be a file name, got %q", c.Scan.ManifestName)
	}
	return nil
}

func (c *Config) validateWorkers() error {
	if c.Workers.Count < 0 {
		return errors.New("workers.count must be zero or positive")
	}
	return nil
}

func (c *Config) validateReport() error {
	if c.Report.ErrorSample < 0 {
		return errors.New("report.error_sample must be zero or positive")
	}
	switch c.Report.Progress {
	case ProgressAuto, ProgressAlways, ProgressNever:
		return nil
	default:
		return fmt.Errorf("report.progress: unsupported value %q (want auto, always, or never)", c.Report.Progress)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
