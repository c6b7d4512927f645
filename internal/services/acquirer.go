package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"pcsd/internal/providers"
	"pcsd/internal/structures"
	"time"

	json "github.com/goccy/go-json"
)

var ErrAcquisitionDisabled = errors.New("acquisition is not configured")

const maxAcquireBody = 1 << 20 // 1 MB

// AcquirerInterface supplies a category -> count mapping gathered outside
// this service. Keys are already normalized category names.
type AcquirerInterface interface {
	Acquire(ctx context.Context) (map[string]int, error)
}

// HTTPAcquirer fetches a JSON object of counts from an upstream collector.
type HTTPAcquirer struct {
	url    string
	client *http.Client
	logger providers.Logger
}

func NewAcquirer(conf *structures.Config, logger providers.Logger) AcquirerInterface {
	if conf.Acquisition.URL == "" {
		return &disabledAcquirer{}
	}
	timeout := conf.Acquisition.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPAcquirer{
		url:    conf.Acquisition.URL,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (a *HTTPAcquirer) Acquire(ctx context.Context) (map[string]int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("acquire: unexpected status %d", resp.StatusCode)
	}

	var counts map[string]int
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxAcquireBody)).Decode(&counts); err != nil {
		return nil, fmt.Errorf("acquire: decode: %w", err)
	}
	if len(counts) == 0 {
		return nil, errors.New("acquire: empty mapping")
	}
	a.logger.Debugf(providers.TypeApp, "Acquired %d realm counts from %s", len(counts), a.url)
	return counts, nil
}

type disabledAcquirer struct{}

func (d *disabledAcquirer) Acquire(_ context.Context) (map[string]int, error) {
	return nil, ErrAcquisitionDisabled
}
