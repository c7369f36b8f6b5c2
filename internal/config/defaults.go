package config

const (
	defaultStagingDir = "~/.local/share/soundminer/staging"
	defaultLibraryDir = "~/soundminer"
	defaultLogDir     = "~/.local/share/soundminer/logs"

	defaultAcquisitionTimeout = 20
	defaultTikwmBaseURL       = "https://www.tikwm.com/api/"
	defaultCobaltBaseURL      = "https://api.cobalt.tools"
	defaultYtDlpBinary        = "yt-dlp"
	defaultNativeSlots        = 2
	defaultCautiousDelay      = 3
	defaultFFmpegBinary       = "ffmpeg"
	defaultFpcalcBinary       = "fpcalc"
	defaultSampleRate         = 44100
	defaultShazamBaseURL      = "http://127.0.0.1:8087"
	defaultAcoustIDBaseURL    = "https://api.acoustid.org"
	defaultRecognitionTimeout = 20
	defaultAgreeThreshold     = 80
	defaultQueryQualifier     = "official audio"
	defaultMasterMinSeconds   = 110
	defaultMasterMaxSeconds   = 600
	defaultMasterSearchLimit  = 5
	defaultNotifyTimeout      = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LibraryDir: defaultLibraryDir,
			LogDir:     defaultLogDir,
		},
		Acquisition: Acquisition{
			TimeoutSeconds:       defaultAcquisitionTimeout,
			TikwmBaseURL:         defaultTikwmBaseURL,
			CobaltBaseURL:        defaultCobaltBaseURL,
			YtDlpBinary:          defaultYtDlpBinary,
			NativeSlots:          defaultNativeSlots,
			CautiousDelaySeconds: defaultCautiousDelay,
		},
		Recognition: Recognition{
			FFmpegBinary:    defaultFFmpegBinary,
			SampleRate:      defaultSampleRate,
			ShazamEnabled:   true,
			ShazamBaseURL:   defaultShazamBaseURL,
			AcoustIDEnabled: true,
			AcoustIDBaseURL: defaultAcoustIDBaseURL,
			FpcalcBinary:    defaultFpcalcBinary,
			TimeoutSeconds:  defaultRecognitionTimeout,
		},
		Consensus: Consensus{
			AgreeThreshold: defaultAgreeThreshold,
		},
		Master: Master{
			QueryQualifier: defaultQueryQualifier,
			MinSeconds:     defaultMasterMinSeconds,
			MaxSeconds:     defaultMasterMaxSeconds,
			SearchLimit:    defaultMasterSearchLimit,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			Items:          true,
			Batch:          true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
