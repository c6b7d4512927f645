package archive

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"pcsd/internal/archive/interfaces"
	"pcsd/internal/models"
	"pcsd/internal/providers"
	"pcsd/internal/storage"

	json "github.com/goccy/go-json"
)

const archiveVersion = 1

var ErrUnsupportedVersion = errors.New("unsupported archive version")

// Document is the decompressed archive body.
type Document struct {
	Version   int               `json:"version"`
	Snapshots []models.Snapshot `json:"snapshots"`
}

type FileManager struct {
	store      storage.SnapshotStoreInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store storage.SnapshotStoreInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
	}
}

// SaveToFile exports the full history and atomically replaces fileName.
func (f *FileManager) SaveToFile(ctx context.Context, fileName string) (int, error) {
	series, err := f.store.Series(ctx, math.MinInt64, math.MaxInt64)
	if err != nil {
		return 0, err
	}
	doc := Document{Version: archiveVersion, Snapshots: series.Snapshots()}

	jsonData, err := json.Marshal(doc)
	if err != nil {
		return 0, err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
		return 0, err
	}
	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return 0, err
	}

	if _, err = file.Write(data); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return 0, err
	}
	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return 0, err
	}
	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return 0, err
	}

	return len(doc.Snapshots), os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile imports an archive into an empty store. A missing file or a
// store that already holds history is not an error; nothing is imported.
func (f *FileManager) LoadFromFile(ctx context.Context, fileName string) (int, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	latest, err := f.store.Latest(ctx)
	if err != nil {
		return 0, err
	}
	if latest != nil {
		f.logger.Infof(providers.TypeApp, "Store already holds history, skipping import of %s", fileName)
		return 0, nil
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		return 0, fmt.Errorf("decompress archive: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(decompressed, &doc); err != nil {
		return 0, fmt.Errorf("decode archive: %w", err)
	}
	if doc.Version != archiveVersion {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	for i, snap := range doc.Snapshots {
		ts := snap.Ts
		raw := make(map[string]int, len(snap.Counts))
		for cat, count := range snap.Counts {
			raw[string(cat)] = count
		}
		if _, err := f.store.Record(ctx, &ts, raw); err != nil {
			return i, err
		}
	}
	return len(doc.Snapshots), nil
}
