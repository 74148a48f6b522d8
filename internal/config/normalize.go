package config

import (
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTMDB()
	if err := c.normalizeWorkflow(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkspaceDir, err = expandPath(c.Paths.WorkspaceDir); err != nil {
		return err
	}
	if c.Paths.DatasetsDir, err = expandPath(c.Paths.DatasetsDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	if c.TMDB.APIKey == "" {
		c.TMDB.APIKey = strings.TrimSpace(os.Getenv("TMDB_API_KEY"))
	}
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = DefaultTMDBBaseURL
	}
	if c.TMDB.Language == "" {
		c.TMDB.Language = DefaultTMDBLanguage
	}
	if c.TMDB.RequestTimeout <= 0 {
		c.TMDB.RequestTimeout = DefaultTMDBRequestTimeout
	}
	if c.TMDB.PagesPerYear <= 0 {
		c.TMDB.PagesPerYear = DefaultTMDBPagesPerYear
	}
	if c.TMDB.MinVoteCount < 0 {
		c.TMDB.MinVoteCount = DefaultTMDBMinVoteCount
	}
}

func (c *Config) normalizeWorkflow() error {
	if c.Workflow.DefaultPlan != "" {
		expanded, err := expandPath(c.Workflow.DefaultPlan)
		if err != nil {
			return err
		}
		c.Workflow.DefaultPlan = expanded
	}
	if c.Workflow.LockTimeout <= 0 {
		c.Workflow.LockTimeout = DefaultWorkflowLockTimeout
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = DefaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.RetainDays < 0 {
		c.Logging.RetainDays = 0
	}
}
