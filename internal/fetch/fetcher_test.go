package fetch_test

import (
	"context"
	"fmt"
	"testing"

	"marquee/internal/dataset"
	"marquee/internal/fetch"
	"marquee/internal/logging"
	"marquee/internal/testsupport"
	"marquee/internal/tmdb"
)

type fakeSource struct {
	byYear map[int][]tmdb.DiscoverResult
	movies map[int64]*tmdb.Movie

	discoverCalls int
	detailCalls   int
}

func (s *fakeSource) DiscoverTopRevenue(ctx context.Context, year, page, minVotes int) (*tmdb.DiscoverResponse, error) {
	s.discoverCalls++
	results := s.byYear[year]
	return &tmdb.DiscoverResponse{Page: page, Results: results, TotalPages: 1}, nil
}

func (s *fakeSource) MovieDetails(ctx context.Context, movieID int64) (*tmdb.Movie, error) {
	s.detailCalls++
	movie, ok := s.movies[movieID]
	if !ok {
		return nil, fmt.Errorf("unknown movie %d", movieID)
	}
	return movie, nil
}

func movie(id int64, title string, budget, revenue int64) *tmdb.Movie {
	return &tmdb.Movie{
		ID:               id,
		Title:            title,
		ReleaseDate:      "2015-06-06",
		Budget:           budget,
		Revenue:          revenue,
		Runtime:          120,
		VoteAverage:      7.1,
		VoteCount:        500,
		Popularity:       42.5,
		OriginalLanguage: "en",
		Genres:           []tmdb.Genre{{ID: 28, Name: "Action"}, {ID: 12, Name: "Adventure"}},
		Collection:       &tmdb.Collection{ID: 1, Name: "Example Collection"},
		Credits: tmdb.Credits{
			Cast: []tmdb.CastMember{{Name: "Lead", Order: 0}, {Name: "Support", Order: 1}},
			Crew: []tmdb.CrewMember{{Job: "Director", Name: "Pat Example"}},
		},
	}
}

func TestFetchWritesFilteredDataset(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.TMDB.StartYear = 2015
	cfg.TMDB.EndYear = 2016
	cfg.TMDB.PagesPerYear = 2
	cfg.TMDB.MinVoteCount = 10

	source := &fakeSource{
		byYear: map[int][]tmdb.DiscoverResult{
			2015: {{ID: 1}, {ID: 2}},
			2016: {{ID: 3}, {ID: 1}}, // 1 re-released; must not duplicate
		},
		movies: map[int64]*tmdb.Movie{
			1: movie(1, "Kept A", 100_000_000, 500_000_000),
			2: movie(2, "No Budget", 0, 500_000_000),
			3: movie(3, "Kept B", 50_000_000, 90_000_000),
		},
	}

	fetcher := fetch.NewFetcher(cfg, source, logging.NewNop())
	summary, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if summary.Discovered != 3 || summary.Kept != 2 || summary.Skipped != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	table, err := dataset.Read(summary.OutputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if table.RowCount() != 2 {
		t.Fatalf("rows = %d, want 2", table.RowCount())
	}
	want := []string{
		"id", "title", "release_date", "budget", "revenue", "runtime",
		"rating", "vote_count", "popularity", "genres", "original_language",
		"collection", "director", "cast_size",
	}
	got := table.ColumnNames()
	if len(got) != len(want) {
		t.Fatalf("columns = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("columns = %v, want %v", got, want)
		}
	}

	first := table.Rows[0]
	if first[0] != "1" || first[1] != "Kept A" {
		t.Fatalf("first row = %v", first)
	}
	if first[9] != "Action|Adventure" {
		t.Fatalf("genres cell = %q", first[9])
	}
	if first[11] != "Example Collection" || first[12] != "Pat Example" {
		t.Fatalf("collection/director cells = %q / %q", first[11], first[12])
	}
	if first[13] != "2" {
		t.Fatalf("cast_size = %q", first[13])
	}

	// Movie 1 was looked up once despite appearing in two years.
	if source.detailCalls != 3 {
		t.Fatalf("detail calls = %d, want 3", source.detailCalls)
	}
}

func TestFetchStopsAtReportedTotalPages(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.TMDB.StartYear = 2015
	cfg.TMDB.EndYear = 2015
	cfg.TMDB.PagesPerYear = 5

	source := &fakeSource{
		byYear: map[int][]tmdb.DiscoverResult{2015: {{ID: 1}}},
		movies: map[int64]*tmdb.Movie{1: movie(1, "Only", 10, 20)},
	}

	fetcher := fetch.NewFetcher(cfg, source, logging.NewNop())
	if _, err := fetcher.Fetch(context.Background()); err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if source.discoverCalls != 1 {
		t.Fatalf("discover calls = %d, want 1", source.discoverCalls)
	}
}

func TestFetchRejectsBadYearRange(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.TMDB.StartYear = 2020
	cfg.TMDB.EndYear = 2015

	fetcher := fetch.NewFetcher(cfg, &fakeSource{}, logging.NewNop())
	if _, err := fetcher.Fetch(context.Background()); err == nil {
		t.Fatal("expected error for inverted year range")
	}
}

func TestFetchErrorsWhenNothingKept(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.TMDB.StartYear = 2015
	cfg.TMDB.EndYear = 2015

	source := &fakeSource{
		byYear: map[int][]tmdb.DiscoverResult{2015: {{ID: 1}}},
		movies: map[int64]*tmdb.Movie{1: movie(1, "Zeroed", 0, 0)},
	}

	fetcher := fetch.NewFetcher(cfg, source, logging.NewNop())
	if _, err := fetcher.Fetch(context.Background()); err == nil {
		t.Fatal("expected error when no movie has usable financials")
	}
}
