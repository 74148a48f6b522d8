package fetch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"log/slog"

	"marquee/internal/config"
	"marquee/internal/dataset"
	"marquee/internal/logging"
	"marquee/internal/services"
	"marquee/internal/tmdb"
)

// datasetColumns is the schema of the acquired CSV, one row per movie.
var datasetColumns = []string{
	"id", "title", "release_date", "budget", "revenue", "runtime",
	"rating", "vote_count", "popularity", "genres", "original_language",
	"collection", "director", "cast_size",
}

// MovieSource lists and resolves movies. Satisfied by *tmdb.Client.
type MovieSource interface {
	DiscoverTopRevenue(ctx context.Context, year, page, minVotes int) (*tmdb.DiscoverResponse, error)
	MovieDetails(ctx context.Context, movieID int64) (*tmdb.Movie, error)
}

// Summary reports what one acquisition pass produced.
type Summary struct {
	StartYear  int
	EndYear    int
	Discovered int
	Kept       int
	Skipped    int
	OutputPath string
}

// Fetcher acquires a top-revenue movie dataset and writes it as CSV into the
// configured datasets directory.
type Fetcher struct {
	cfg    *config.Config
	source MovieSource
	logger *slog.Logger
}

// NewFetcher constructs a fetcher over the given movie source.
func NewFetcher(cfg *config.Config, source MovieSource, logger *slog.Logger) *Fetcher {
	return &Fetcher{cfg: cfg, source: source, logger: logging.NewComponentLogger(logger, "fetch")}
}

// Fetch walks the configured year range page by page, resolves each
// discovered movie to its full record, and keeps only rows with positive
// budget and revenue. Movies are deduplicated by id across years.
func (f *Fetcher) Fetch(ctx context.Context) (*Summary, error) {
	spec := f.cfg.TMDB
	if spec.StartYear <= 0 || spec.EndYear < spec.StartYear {
		return nil, services.Wrap(services.ErrConfiguration, "fetch", "validate year range",
			fmt.Sprintf("Invalid TMDB year range %d..%d", spec.StartYear, spec.EndYear), nil)
	}
	pagesPerYear := spec.PagesPerYear
	if pagesPerYear <= 0 {
		pagesPerYear = 1
	}

	table := dataset.NewTable(datasetColumns...)
	seen := make(map[int64]struct{})
	summary := &Summary{StartYear: spec.StartYear, EndYear: spec.EndYear}
	sampler := logging.NewProgressSampler(10)
	totalYears := float64(spec.EndYear - spec.StartYear + 1)

	for year := spec.StartYear; year <= spec.EndYear; year++ {
		for page := 1; page <= pagesPerYear; page++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			resp, err := f.source.DiscoverTopRevenue(ctx, year, page, spec.MinVoteCount)
			if err != nil {
				return nil, services.Wrap(services.ErrTransient, "fetch", "discover movies",
					fmt.Sprintf("TMDB discover failed for year %d page %d", year, page), err)
			}
			for _, result := range resp.Results {
				if _, dup := seen[result.ID]; dup {
					continue
				}
				seen[result.ID] = struct{}{}
				summary.Discovered++

				movie, err := f.source.MovieDetails(ctx, result.ID)
				if err != nil {
					return nil, services.Wrap(services.ErrTransient, "fetch", "resolve movie",
						fmt.Sprintf("TMDB details failed for movie %d", result.ID), err)
				}
				if movie.Revenue <= 0 || movie.Budget <= 0 {
					summary.Skipped++
					continue
				}
				table.Rows = append(table.Rows, movieRow(movie))
				summary.Kept++
			}
			if resp.TotalPages > 0 && page >= resp.TotalPages {
				break
			}
		}
		percent := float64(year-spec.StartYear+1) / totalYears * 100
		if sampler.ShouldLog(percent, "discover", "") {
			f.logger.Info("acquisition progress",
				logging.Float64("percent", percent),
				logging.Int("year", year),
				logging.Int("kept_so_far", summary.Kept),
			)
		}
	}

	if summary.Kept == 0 {
		return nil, services.Wrap(services.ErrNotFound, "fetch", "collect movies",
			"No movies with usable financials were found for the configured range", nil)
	}

	if err := os.MkdirAll(f.cfg.Paths.DatasetsDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrTransient, "fetch", "prepare output",
			fmt.Sprintf("Cannot create datasets directory %s", f.cfg.Paths.DatasetsDir), err)
	}
	outputPath := filepath.Join(f.cfg.Paths.DatasetsDir,
		fmt.Sprintf("tmdb_top_revenue_%d_%d.csv", spec.StartYear, spec.EndYear))
	if err := dataset.Write(outputPath, table); err != nil {
		return nil, services.Wrap(services.ErrTransient, "fetch", "write dataset",
			fmt.Sprintf("Cannot write %s", outputPath), err)
	}
	summary.OutputPath = outputPath

	f.logger.Info("dataset acquired",
		logging.String("output", outputPath),
		logging.Int("discovered", summary.Discovered),
		logging.Int("kept", summary.Kept),
		logging.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func movieRow(movie *tmdb.Movie) []string {
	collection := ""
	if movie.Collection != nil {
		collection = movie.Collection.Name
	}
	return []string{
		strconv.FormatInt(movie.ID, 10),
		movie.Title,
		movie.ReleaseDate,
		strconv.FormatInt(movie.Budget, 10),
		strconv.FormatInt(movie.Revenue, 10),
		strconv.Itoa(movie.Runtime),
		strconv.FormatFloat(movie.VoteAverage, 'g', -1, 64),
		strconv.FormatInt(movie.VoteCount, 10),
		strconv.FormatFloat(movie.Popularity, 'g', -1, 64),
		strings.Join(movie.GenreNames(), "|"),
		movie.OriginalLanguage,
		collection,
		movie.Director(),
		strconv.Itoa(len(movie.Credits.Cast)),
	}
}
