package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/ironsheep/exposure-meter-mcp/internal/logging"
	"github.com/ironsheep/exposure-meter-mcp/internal/meter"
	"github.com/ironsheep/exposure-meter-mcp/internal/settings"
)

type rootFlags struct {
	config      string
	logLevel    string
	logFormat   string
	metricsAddr string
	strict      bool
}

type commandContext struct {
	flags *rootFlags

	settingsOnce sync.Once
	settings     *settings.Settings
	settingsPath string
	settingsErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureSettings() (*settings.Settings, error) {
	c.settingsOnce.Do(func() {
		s, path, _, err := settings.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.settingsErr = fmt.Errorf("load settings: %w", err)
			return
		}
		c.settings = s
		c.settingsPath = path
	})
	return c.settings, c.settingsErr
}

// ensureLogger builds the process logger on the command's stderr. Stdout
// carries protocol traffic or command output.
func (c *commandContext) ensureLogger(cmd *cobra.Command) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		level := strings.TrimSpace(c.flags.logLevel)
		if level == "" {
			level = logging.LevelFromEnv("info")
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:  level,
			Format: c.flags.logFormat,
			Writer: cmd.ErrOrStderr(),
		})
	})
	return c.logger, c.loggerErr
}

// meterConfig returns the exposure config and calibration profile of the
// loaded settings.
func (c *commandContext) meterConfig() (meter.ExposureConfig, meter.CalibrationProfile, error) {
	s, err := c.ensureSettings()
	if err != nil {
		return meter.ExposureConfig{}, meter.CalibrationProfile{}, err
	}
	cfg, err := s.ExposureConfig()
	if err != nil {
		return meter.ExposureConfig{}, meter.CalibrationProfile{}, err
	}
	cal, err := s.CalibrationProfile()
	if err != nil {
		return meter.ExposureConfig{}, meter.CalibrationProfile{}, err
	}
	return cfg, cal, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
