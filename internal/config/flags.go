package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagLogFile   = flag.String("logfile", "", "Write logs to a file")
	flagScanLimit = flag.Int("scan-limit", 0, "Max TRM padding-scan bytes")
	flagTexDir    = flag.String("texdir", "", "Texture directory override")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via -config.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
	if *flagScanLimit > 0 {
		cfg.Decode.MaxPaddingScan = *flagScanLimit
	}
	if *flagTexDir != "" {
		cfg.Textures.Dir = *flagTexDir
	}
}
