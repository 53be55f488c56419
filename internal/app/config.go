package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete terminal configuration, loadable from
// environment variables (POS_ prefix), flags, or YAML config files.
type Config struct {
	BackendURL string `usage:"Backend API base URL (POS_BACKEND_URL)" flag:"backend-url"`
	Token      string `usage:"Bearer token for the backend API (POS_TOKEN)"`
	DataDir    string `usage:"Directory for cart and catalog state" flag:"data-dir"`
	HTTP       HTTPConfig
	Scan       ScanConfig
	Probe      ProbeConfig
}

// HTTPConfig controls the backend transport.
type HTTPConfig struct {
	Timeout        time.Duration `default:"10s"   usage:"Per-request timeout"`
	RetryAttempts  int           `default:"3"     usage:"Total tries for idempotent requests" flag:"retry-attempts"`
	RetryBaseDelay time.Duration `default:"100ms" usage:"Initial retry backoff" flag:"retry-base-delay"`
	RetryMaxDelay  time.Duration `default:"2s"    usage:"Backoff cap" flag:"retry-max-delay"`
}

// ScanConfig controls the scan workflow timings.
type ScanConfig struct {
	DuplicateWindow time.Duration `default:"3s" usage:"Window in which rescans of the same barcode are ignored" flag:"duplicate-window"`
	SettleDelay     time.Duration `default:"1s" usage:"Delay before a scan is resolved" flag:"settle-delay"`
	ToastDuration   time.Duration `default:"3s" usage:"How long the add-to-cart confirmation shows" flag:"toast-duration"`
	RearmDelay      time.Duration `default:"1s" usage:"Pause after an add before the same product scans again" flag:"rearm-delay"`
}

// ProbeConfig controls the backend availability monitor.
type ProbeConfig struct {
	Interval         time.Duration `default:"30s" usage:"Time between availability probes"`
	Timeout          time.Duration `default:"5s"  usage:"Timeout for a single probe"`
	FailureThreshold int           `default:"3"   usage:"Consecutive failures before the backend is considered away" flag:"failure-threshold"`
	SuccessThreshold int           `default:"1"   usage:"Consecutive successes before the backend is considered back" flag:"success-threshold"`
}

// SnapshotFile is the catalog snapshot's name inside DataDir. The
// catalog-sync tool writes it, the terminal reads it at start.
const SnapshotFile = "catalog.snap"

// SnapshotPath returns the full path of the catalog snapshot.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.DataDir, SnapshotFile)
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies defaults for values the platform can provide.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "POS",
		Files:     []string{"config.yaml", "/etc/pos-terminal/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	if cfg.BackendURL == "" {
		return nil, errors.New("backend URL is required: set POS_BACKEND_URL")
	}
	return &cfg, nil
}

// applyDefaults fills in the state directory when none is configured: the
// user config dir when available, the working directory otherwise.
func (c *Config) applyDefaults() error {
	if c.DataDir != "" {
		return nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		c.DataDir = ".pos-terminal"
		return nil
	}
	c.DataDir = filepath.Join(base, "pos-terminal")
	return nil
}
