package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAcquisition()
	c.normalizeRecognition()
	c.normalizeMaster()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return fmt.Errorf("paths.staging_dir: %w", err)
	}
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAcquisition() {
	if c.Acquisition.TimeoutSeconds <= 0 {
		c.Acquisition.TimeoutSeconds = defaultAcquisitionTimeout
	}
	if strings.TrimSpace(c.Acquisition.TikwmBaseURL) == "" {
		c.Acquisition.TikwmBaseURL = defaultTikwmBaseURL
	}
	if strings.TrimSpace(c.Acquisition.CobaltBaseURL) == "" {
		c.Acquisition.CobaltBaseURL = defaultCobaltBaseURL
	}
	if strings.TrimSpace(c.Acquisition.YtDlpBinary) == "" {
		c.Acquisition.YtDlpBinary = defaultYtDlpBinary
	}
	if c.Acquisition.NativeSlots <= 0 {
		c.Acquisition.NativeSlots = defaultNativeSlots
	}
	if c.Acquisition.CautiousDelaySeconds <= 0 {
		c.Acquisition.CautiousDelaySeconds = defaultCautiousDelay
	}
}

func (c *Config) normalizeRecognition() {
	if strings.TrimSpace(c.Recognition.FFmpegBinary) == "" {
		c.Recognition.FFmpegBinary = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Recognition.FpcalcBinary) == "" {
		c.Recognition.FpcalcBinary = defaultFpcalcBinary
	}
	if c.Recognition.SampleRate <= 0 {
		c.Recognition.SampleRate = defaultSampleRate
	}
	if strings.TrimSpace(c.Recognition.ShazamBaseURL) == "" {
		c.Recognition.ShazamBaseURL = defaultShazamBaseURL
	}
	if strings.TrimSpace(c.Recognition.AcoustIDBaseURL) == "" {
		c.Recognition.AcoustIDBaseURL = defaultAcoustIDBaseURL
	}
	if c.Recognition.TimeoutSeconds <= 0 {
		c.Recognition.TimeoutSeconds = defaultRecognitionTimeout
	}
}

func (c *Config) normalizeMaster() {
	if strings.TrimSpace(c.Master.QueryQualifier) == "" {
		c.Master.QueryQualifier = defaultQueryQualifier
	}
	if c.Master.MinSeconds <= 0 {
		c.Master.MinSeconds = defaultMasterMinSeconds
	}
	if c.Master.MaxSeconds <= 0 {
		c.Master.MaxSeconds = defaultMasterMaxSeconds
	}
	if c.Master.SearchLimit <= 0 {
		c.Master.SearchLimit = defaultMasterSearchLimit
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// ExpandPath resolves ~ and relative segments into an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.New("resolve home directory")
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve path %s: %w", trimmed, err)
	}
	return abs, nil
}
