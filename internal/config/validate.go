package config

import (
	"fmt"
	"strings"
)

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	var issues []string

	issues = append(issues, c.validatePaths()...)
	issues = append(issues, c.validateTMDB()...)
	issues = append(issues, c.validateLogging()...)

	if len(issues) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(issues, "; "))
	}
	return nil
}

func (c *Config) validatePaths() []string {
	var issues []string
	required := map[string]string{
		"paths.workspace_dir": c.Paths.WorkspaceDir,
		"paths.datasets_dir":  c.Paths.DatasetsDir,
		"paths.log_dir":       c.Paths.LogDir,
	}
	for key, value := range required {
		if strings.TrimSpace(value) == "" {
			issues = append(issues, fmt.Sprintf("%s must not be empty", key))
		}
	}
	return issues
}

func (c *Config) validateTMDB() []string {
	var issues []string
	// api_key stays optional here: only the fetch command needs it, and it
	// reports a clearer error at the point of use.
	if c.TMDB.StartYear > c.TMDB.EndYear {
		issues = append(issues, fmt.Sprintf("tmdb.start_year (%d) must not exceed tmdb.end_year (%d)", c.TMDB.StartYear, c.TMDB.EndYear))
	}
	positives := map[string]int{
		"tmdb.request_timeout": c.TMDB.RequestTimeout,
		"tmdb.pages_per_year":  c.TMDB.PagesPerYear,
	}
	issues = append(issues, ensurePositiveMap(positives)...)
	return issues
}

func (c *Config) validateLogging() []string {
	var issues []string
	switch c.Logging.Format {
	case "console", "json":
	default:
		issues = append(issues, fmt.Sprintf("logging.format %q must be console or json", c.Logging.Format))
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		issues = append(issues, fmt.Sprintf("logging.level %q must be debug, info, warn, or error", c.Logging.Level))
	}
	return issues
}

func ensurePositiveMap(values map[string]int) []string {
	var issues []string
	for key, value := range values {
		if value <= 0 {
			issues = append(issues, fmt.Sprintf("%s must be positive", key))
		}
	}
	return issues
}
