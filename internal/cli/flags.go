package cli

import "scr/internal/config"

// Flags holds command-line flags
type Flags struct {
	ConfigFile  string
	EnvFile     string
	Name        string
	BrowserName string
	Build       string
	Tags        []string
	Region      string
	OutputFile  string
	NoUpload    bool
	HistoryDSN  string
	Debug       bool
	Progress    bool
	All         bool
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		ConfigFile:  f.ConfigFile,
		EnvFile:     f.EnvFile,
		Name:        f.Name,
		BrowserName: f.BrowserName,
		Build:       f.Build,
		Tags:        f.Tags,
		Region:      f.Region,
		OutputFile:  f.OutputFile,
		NoUpload:    f.NoUpload,
		HistoryDSN:  f.HistoryDSN,
		Debug:       f.Debug,
	}
}
