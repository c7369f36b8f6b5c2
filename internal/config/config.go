package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LibraryDir string `toml:"library_dir"`
	LogDir     string `toml:"log_dir"`
}

// Acquisition configures the provider cascade.
type Acquisition struct {
	// TimeoutSeconds bounds every single provider attempt.
	TimeoutSeconds int    `toml:"timeout_seconds"`
	TikwmBaseURL   string `toml:"tikwm_base_url"`
	CobaltBaseURL  string `toml:"cobalt_base_url"`
	YtDlpBinary    string `toml:"ytdlp_binary"`
	// NativeSlots bounds concurrent native extractor subprocesses.
	NativeSlots int `toml:"native_slots"`
	// CautiousDelaySeconds is the inter-request sleep of the last-resort strategy.
	CautiousDelaySeconds int `toml:"cautious_delay_seconds"`
}

// Recognition configures the fingerprint signal sources and audio normalization.
type Recognition struct {
	FFmpegBinary    string `toml:"ffmpeg_binary"`
	SampleRate      int    `toml:"sample_rate"`
	ShazamEnabled   bool   `toml:"shazam_enabled"`
	ShazamBaseURL   string `toml:"shazam_base_url"`
	AcoustIDEnabled bool   `toml:"acoustid_enabled"`
	AcoustIDBaseURL string `toml:"acoustid_base_url"`
	AcoustIDAPIKey  string `toml:"acoustid_api_key"`
	FpcalcBinary    string `toml:"fpcalc_binary"`
	TimeoutSeconds  int    `toml:"timeout_seconds"`
}

// Consensus configures signal fusion.
type Consensus struct {
	// AgreeThreshold is the pairwise similarity score (0-100) above which two
	// signals agree.
	AgreeThreshold int `toml:"agree_threshold"`
	// ExactMatchOnly swaps the token-set scorer for a strict equality scorer.
	ExactMatchOnly bool `toml:"exact_match_only"`
}

// Master configures catalog resolution of the studio release.
type Master struct {
	QueryQualifier string `toml:"query_qualifier"`
	// MinSeconds and MaxSeconds bound accepted candidate durations; both
	// bounds are exclusive.
	MinSeconds  int `toml:"min_seconds"`
	MaxSeconds  int `toml:"max_seconds"`
	SearchLimit int `toml:"search_limit"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	Items          bool   `toml:"items"`
	Batch          bool   `toml:"batch"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Soundminer.
//
// Configuration sections by subsystem:
//   - Paths: staging, library, and log directories
//   - Acquisition: provider cascade tuning (relays, native extractor)
//   - Recognition: fingerprint services and audio normalization
//   - Consensus: signal agreement threshold and scorer selection
//   - Master: catalog search query and duration acceptance window
//   - Notifications: ntfy push notification settings
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Acquisition   Acquisition   `toml:"acquisition"`
	Recognition   Recognition   `toml:"recognition"`
	Consensus     Consensus     `toml:"consensus"`
	Master        Master        `toml:"master"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/soundminer/config.toml")
}

// SampleConfig returns the embedded annotated sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. Missing files yield defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// EnsureDirectories creates the staging, library, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LibraryDir, c.Paths.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WriteSample writes the embedded sample configuration to path, refusing to
// overwrite an existing file.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists: %s", expanded)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("soundminer.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}
