package services

import (
	"context"
	"fmt"
	"pcsd/internal/models"
	"pcsd/internal/storage"
	"strconv"
	"strings"
)

const (
	NoHistoryMessage = "No player count history available yet."
	compareWindow    = 3600
)

type ReportOptions struct {
	IncludeGraph bool
	RangeHours   int
}

type ReportServiceInterface interface {
	Build(ctx context.Context, opts ReportOptions) (*models.Report, error)
}

type ReportService struct {
	store storage.SnapshotStoreInterface
	graph GraphServiceInterface
}

func NewReportService(store storage.SnapshotStoreInterface, graph GraphServiceInterface) ReportServiceInterface {
	return &ReportService{store: store, graph: graph}
}

// Build compares the latest snapshot with the one about an hour older and
// optionally attaches a chart of the last RangeHours hours.
func (rs *ReportService) Build(ctx context.Context, opts ReportOptions) (*models.Report, error) {
	current, err := rs.store.Latest(ctx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return &models.Report{Message: NoHistoryMessage}, nil
	}

	previous, err := rs.store.AtOrBefore(ctx, current.Ts-compareWindow)
	if err != nil {
		return nil, err
	}
	if previous == nil {
		previous, err = rs.store.Before(ctx, current.Ts)
		if err != nil {
			return nil, err
		}
	}

	report := &models.Report{Message: formatReport(current, previous)}
	if !opts.IncludeGraph {
		return report, nil
	}

	hours := max(opts.RangeHours, 1)
	start := current.Ts - int64(hours)*3600
	chartBytes, reason := rs.graph.Render(ctx, start, current.Ts)
	if reason != "" {
		report.ChartError = reason
		report.Message += "\n**Graph:** " + reason
		return report, nil
	}
	report.Chart = chartBytes
	return report, nil
}

// formatReport renders the comparison text. A nil previous snapshot is
// compared against current itself, so every delta is +0.
func formatReport(current, previous *models.Snapshot) string {
	prevCounts := current.Counts
	if previous != nil {
		prevCounts = previous.Counts
	}

	totalCurrent := current.Counts.Total()
	totalPrevious := prevCounts.Total()

	lines := []string{
		"**Steam player counts**",
		fmt.Sprintf("**Updated:** %s", relativeTime(current.Ts)),
		fmt.Sprintf("**Users online:** %d (%s)", totalCurrent, formatDelta(totalCurrent, totalPrevious)),
	}
	if previous != nil {
		lines = append(lines, fmt.Sprintf("**Compared to:** %s", relativeTime(previous.Ts)))
	} else {
		lines = append(lines, "**Compared to:** no earlier snapshots")
	}

	lines = append(lines, "**Realms:**")
	for _, info := range models.CategoryInfos() {
		cur := current.Counts.Get(info.Key)
		prev := prevCounts.Get(info.Key)
		lines = append(lines, fmt.Sprintf("- %s: %d (%s)", info.Label, cur, formatDelta(cur, prev)))
	}
	return strings.Join(lines, "\n")
}

// relativeTime is the chat markup for a timestamp shown relative to the reader.
func relativeTime(ts int64) string {
	return fmt.Sprintf("<t:%d:R>", ts)
}

// formatDelta always signs the difference; zero is "+0".
func formatDelta(current, previous int) string {
	delta := current - previous
	if delta >= 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
