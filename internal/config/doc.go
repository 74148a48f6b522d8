// Package config loads and validates marquee's TOML configuration.
//
// Configuration resolution order: an explicit --config path, then
// ~/.config/marquee/config.toml, then a marquee.toml in the working
// directory. Missing files are not an error; defaults apply and the
// resolved path is reported so `config path` can say where a file
// would be written.
//
// Loading always normalizes before validating: paths are expanded to
// absolute form, the TMDB API key falls back to the TMDB_API_KEY
// environment variable, and blank enum fields pick up their defaults.
// Callers therefore never see a half-resolved Config.
package config
