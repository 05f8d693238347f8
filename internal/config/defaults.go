package config

const (
	defaultRoot           = "subtitle-backup"
	defaultStateDir       = "~/.local/share/subenc"
	defaultManifestName   = "encodings.json"
	defaultErrorSample    = 10
	defaultProgressMode   = ProgressAuto
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultHistoryEnabled = true
)

// Progress modes accepted by report.progress.
const (
	ProgressAuto   = "auto"
	ProgressAlways = "always"
	ProgressNever  = "never"
)

func defaultExtensions() []string {
	return []string{"srt", "ass", "ssa", "sub", "sup"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Root:     defaultRoot,
			StateDir: defaultStateDir,
		},
		Scan: Scan{
			Extensions:   defaultExtensions(),
			ManifestName: defaultManifestName,
		},
		Transcode: Transcode{
			AtomicWrite:    true,
			UpdateManifest: true,
		},
		Report: Report{
			ErrorSample: defaultErrorSample,
			Progress:    defaultProgressMode,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
