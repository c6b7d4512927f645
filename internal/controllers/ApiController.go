package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"pcsd/internal/models"
	"pcsd/internal/providers"
	"pcsd/internal/services"
	"pcsd/internal/storage"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type ApiController struct {
	logger    providers.Logger
	store     storage.SnapshotStoreInterface
	snapshots services.SnapshotServiceInterface
	reports   services.ReportServiceInterface
	graph     services.GraphServiceInterface
	cache     providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, store storage.SnapshotStoreInterface, snapshots services.SnapshotServiceInterface, reports services.ReportServiceInterface, graph services.GraphServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:    logger,
		store:     store,
		snapshots: snapshots,
		reports:   reports,
		graph:     graph,
		cache:     cache,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type recordResponse struct {
	Ts int64 `json:"ts"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps service and storage errors onto status codes. Every
// response still carries a readable message.
func (ac *ApiController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrUnableToGather):
		writeMessage(w, http.StatusServiceUnavailable, services.UnableToGatherMessage)
	case errors.Is(err, storage.ErrStoreUnavailable):
		ac.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
		writeMessage(w, http.StatusServiceUnavailable, "Player count storage is unavailable.")
	case errors.Is(err, services.ErrMenuNotFound):
		writeMessage(w, http.StatusNotFound, "Menu not found.")
	case errors.Is(err, services.ErrInvalidRange):
		writeMessage(w, http.StatusBadRequest, "Range must be one of the offered choices.")
	default:
		ac.logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}
	gen := ac.cache.Generation()

	result, err := compute()
	if err != nil {
		ac.writeError(w, r, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.SetIfGeneration(cacheKey, gson, gen)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

// parseRange reads the "range" query parameter, defaulting to 24 hours.
func parseRange(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("range")
	if raw == "" {
		return models.DefaultRangeHours, nil
	}
	hours, err := strconv.Atoi(raw)
	if err != nil || !models.IsAllowedRange(hours) {
		return 0, fmt.Errorf("invalid range %q", raw)
	}
	return hours, nil
}

func parseInt64(r *http.Request, name string) (int64, bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, true, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, true, nil
}

func parseBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}

// RecordSnapshot stores a mapping posted by the acquisition collaborator.
func (ac *ApiController) RecordSnapshot(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.InputCounts
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad Request")
		return
	}
	v := validate.Struct(&payload)
	if !v.Validate() {
		writeMessage(w, http.StatusBadRequest, v.Errors.One())
		return
	}
	for key, count := range payload.Counts {
		if count < 0 {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("count for %q must not be negative", key))
			return
		}
	}

	ts, err := ac.snapshots.Record(r.Context(), payload.Ts, payload.Counts)
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, recordResponse{Ts: ts})
}

func (ac *ApiController) LatestSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := ac.store.Latest(r.Context())
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	if snap == nil {
		writeMessage(w, http.StatusNotFound, services.NoHistoryMessage)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// SnapshotAt returns the nearest snapshot at or before ts, or strictly
// before it when strict is set.
func (ac *ApiController) SnapshotAt(w http.ResponseWriter, r *http.Request) {
	ts, ok, err := parseInt64(r, "ts")
	if err != nil || !ok {
		writeMessage(w, http.StatusBadRequest, "ts is required")
		return
	}

	var snap *models.Snapshot
	if parseBool(r, "strict") {
		snap, err = ac.store.Before(r.Context(), ts)
	} else {
		snap, err = ac.store.AtOrBefore(r.Context(), ts)
	}
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	if snap == nil {
		writeMessage(w, http.StatusNotFound, "No snapshot found before that time.")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (ac *ApiController) GetSeries(w http.ResponseWriter, r *http.Request) {
	start, okStart, errStart := parseInt64(r, "start")
	end, okEnd, errEnd := parseInt64(r, "end")
	if errStart != nil || errEnd != nil || !okStart || !okEnd {
		writeMessage(w, http.StatusBadRequest, "start and end are required")
		return
	}
	ac.serveFromCacheOrCompute(w, r, fmt.Sprintf("series:%d:%d", start, end), func() (any, error) {
		return ac.store.Series(r.Context(), start, end)
	})
}

// GetReport ensures a snapshot exists and returns the comparison report.
func (ac *ApiController) GetReport(w http.ResponseWriter, r *http.Request) {
	hours, err := parseRange(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := ac.snapshots.EnsureLatest(r.Context()); err != nil {
		ac.writeError(w, r, err)
		return
	}

	report, err := ac.reports.Build(r.Context(), services.ReportOptions{
		IncludeGraph: parseBool(r, "graph"),
		RangeHours:   hours,
	})
	if err != nil {
		ac.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func graphStatus(reason string) int {
	switch reason {
	case services.GraphUnavailable:
		return http.StatusNotImplemented
	case services.GraphNonPositiveRange, services.GraphRangeTooLarge:
		return http.StatusBadRequest
	case services.GraphNoHistory:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// GetGraph renders a PNG for [start, end], or for the last range hours up
// to the latest snapshot when no bounds are given.
func (ac *ApiController) GetGraph(w http.ResponseWriter, r *http.Request) {
	start, okStart, errStart := parseInt64(r, "start")
	end, okEnd, errEnd := parseInt64(r, "end")
	if errStart != nil || errEnd != nil || okStart != okEnd {
		writeMessage(w, http.StatusBadRequest, "start and end must be given together")
		return
	}

	if !okStart {
		hours, err := parseRange(r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, err.Error())
			return
		}
		latest, err := ac.store.Latest(r.Context())
		if err != nil {
			ac.writeError(w, r, err)
			return
		}
		if latest == nil {
			writeMessage(w, http.StatusNotFound, services.GraphNoHistory)
			return
		}
		end = latest.Ts
		start = end - int64(hours)*3600
	}

	data, reason := ac.graph.Render(r.Context(), start, end)
	if reason != "" {
		writeMessage(w, graphStatus(reason), reason)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (ac *ApiController) GetRanges(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, models.GraphRangeChoices)
}
