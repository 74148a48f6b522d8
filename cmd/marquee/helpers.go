package main

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"marquee/internal/runs"
)

var englishPrinter = message.NewPrinter(language.English)

// formatMoney renders a dollar-scale value with thousands grouping. Revenue
// and residual figures are unreadable without it.
func formatMoney(value float64) string {
	return englishPrinter.Sprintf("%.0f", value)
}

// formatCount renders an integer with thousands grouping.
func formatCount(value int) string {
	return englishPrinter.Sprintf("%d", value)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', 4, 64)
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return "-"
	}
	return value.Local().Format("2006-01-02 15:04")
}

func formatProgress(run *runs.Run) string {
	if run.ProgressStage == "" {
		return "-"
	}
	if run.ProgressMessage == "" {
		return fmt.Sprintf("%s %.0f%%", run.ProgressStage, run.ProgressPercent)
	}
	return fmt.Sprintf("%s %.0f%% %s", run.ProgressStage, run.ProgressPercent, truncate(run.ProgressMessage, 40))
}

func truncate(value string, limit int) string {
	if limit <= 3 || len(value) <= limit {
		return value
	}
	return value[:limit-3] + "..."
}

// parseRunID converts a CLI argument into a run identifier.
func parseRunID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid run id %q", arg)
	}
	return id, nil
}
