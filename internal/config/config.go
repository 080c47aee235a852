// Package config resolves tokenuze's environment-derived settings: the
// home directory session files are scanned under, the dashboard upload
// endpoint and key, and the default timezone offset — the same
// env-var-first, sensible-default-second shape
// _examples/janekbaraniewski-openusage/internal/config/config.go uses for
// its own settings.
package config

import (
	"os"
	"runtime"
)

// DefaultDashboardURL is used when DASHBOARD_API_URL is unset.
const DefaultDashboardURL = "http://localhost:8000"

// Config is the resolved set of environment-derived values a tokenuze run
// needs.
type Config struct {
	Home             string
	Hostname         string
	User             string
	LocalAppData     string
	DashboardAPIURL  string
	DashboardAPIKey  string
	TZEnv            string
}

// Load resolves Config from the process environment.
func Load() Config {
	return Config{
		Home:            homeDir(),
		Hostname:        hostname(),
		User:            username(),
		LocalAppData:    os.Getenv("LOCALAPPDATA"),
		DashboardAPIURL: firstNonEmptyEnv("DASHBOARD_API_URL", DefaultDashboardURL),
		DashboardAPIKey: os.Getenv("DASHBOARD_API_KEY"),
		TZEnv:           os.Getenv("TZ"),
	}
}

// MachineIDCacheDir implements spec.md §4.6's
// `${HOME:-%LOCALAPPDATA%}/.ccusage` cache directory resolution.
func (c Config) MachineIDCacheDir() string {
	base := c.Home
	if base == "" {
		base = c.LocalAppData
	}
	return base + string(os.PathSeparator) + ".ccusage"
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return home
	}
	return os.Getenv("HOME")
}

func hostname() string {
	if runtime.GOOS == "windows" {
		if h := os.Getenv("COMPUTERNAME"); h != "" {
			return h
		}
	}
	if h := os.Getenv("HOSTNAME"); h != "" {
		return h
	}
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown-host"
}

func username() string {
	if runtime.GOOS == "windows" {
		if u := os.Getenv("USERNAME"); u != "" {
			return u
		}
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "unknown-user"
}

func firstNonEmptyEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
