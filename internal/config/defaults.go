package config

// Default values for configuration settings.
const (
	DefaultWorkspaceDir = "~/marquee"
	DefaultDatasetsDir  = "~/marquee/datasets"
	DefaultLogDir       = "~/marquee/logs"

	DefaultTMDBBaseURL        = "https://api.themoviedb.org/3"
	DefaultTMDBLanguage       = "en-US"
	DefaultTMDBRequestTimeout = 15
	DefaultTMDBStartYear      = 1990
	DefaultTMDBEndYear        = 2017
	DefaultTMDBPagesPerYear   = 5
	DefaultTMDBMinVoteCount   = 50

	DefaultWorkflowLockTimeout = 30

	DefaultLogFormat     = "console"
	DefaultLogLevel      = "info"
	DefaultLogRetainDays = 30
)

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: DefaultWorkspaceDir,
			DatasetsDir:  DefaultDatasetsDir,
			LogDir:       DefaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:        DefaultTMDBBaseURL,
			Language:       DefaultTMDBLanguage,
			RequestTimeout: DefaultTMDBRequestTimeout,
			StartYear:      DefaultTMDBStartYear,
			EndYear:        DefaultTMDBEndYear,
			PagesPerYear:   DefaultTMDBPagesPerYear,
			MinVoteCount:   DefaultTMDBMinVoteCount,
		},
		Workflow: Workflow{
			DefaultPlan: "",
			LockTimeout: DefaultWorkflowLockTimeout,
		},
		Logging: Logging{
			Format:     DefaultLogFormat,
			Level:      DefaultLogLevel,
			RetainDays: DefaultLogRetainDays,
		},
	}
}
