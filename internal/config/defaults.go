package config

const (
	// DefaultBrowserName is reported when no browser is configured
	DefaultBrowserName = "chrome"
	// DefaultRegion is the Sauce Labs data center used when none is configured
	DefaultRegion = RegionUSWest1
	// DefaultOutputFile is the local report path
	DefaultOutputFile = "sauce-test-report.json"
	// DefaultEnvFile is loaded for credentials when present
	DefaultEnvFile = ".env"
	// BrowserVersion is sent with every report; there is no reliable way to detect it
	BrowserVersion = "1.0"
	// Framework identifies the runner in report requests
	Framework = "cucumber"
)

// Sauce Labs regions
const (
	RegionUSWest1    = "us-west-1"
	RegionEUCentral1 = "eu-central-1"
	RegionStaging    = "staging"
)

// Regions lists every supported region
var Regions = []string{RegionUSWest1, RegionEUCentral1, RegionStaging}

// Environment variables read by FromEnv
const (
	EnvUsername       = "SAUCE_USERNAME"
	EnvAccessKey      = "SAUCE_ACCESS_KEY"
	EnvManagedVM      = "SAUCE_VM"
	EnvVideoStartTime = "SAUCE_VIDEO_START_TIME"
	EnvHistoryDSN     = "SCR_HISTORY_DSN"
)
