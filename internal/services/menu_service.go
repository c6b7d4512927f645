package services

import (
	"context"
	"errors"
	"pcsd/internal/models"
	"pcsd/internal/storage"
)

var (
	ErrMenuNotFound = errors.New("menu not found")
	ErrInvalidRange = errors.New("range is not one of the offered choices")
)

type MenuServiceInterface interface {
	Save(ctx context.Context, rec models.MenuRecord) error
	Get(ctx context.Context, messageID string) (*models.MenuRecord, error)
	List(ctx context.Context) ([]models.MenuRecord, error)
	Delete(ctx context.Context, messageID string) error
	Refresh(ctx context.Context, messageID string) (*models.Report, *models.MenuRecord, error)
}

type MenuService struct {
	menus    storage.MenuStoreInterface
	reports  ReportServiceInterface
	snapshot SnapshotServiceInterface
}

func NewMenuService(menus storage.MenuStoreInterface, reports ReportServiceInterface, snapshot SnapshotServiceInterface) MenuServiceInterface {
	return &MenuService{menus: menus, reports: reports, snapshot: snapshot}
}

func (ms *MenuService) Save(ctx context.Context, rec models.MenuRecord) error {
	if !models.IsAllowedRange(rec.RangeHours) {
		return ErrInvalidRange
	}
	return ms.menus.Upsert(ctx, rec)
}

func (ms *MenuService) Get(ctx context.Context, messageID string) (*models.MenuRecord, error) {
	return ms.menus.Get(ctx, messageID)
}

func (ms *MenuService) List(ctx context.Context) ([]models.MenuRecord, error) {
	return ms.menus.ListAll(ctx)
}

func (ms *MenuService) Delete(ctx context.Context, messageID string) error {
	return ms.menus.Delete(ctx, messageID)
}

// Refresh rebuilds the report exactly as the stored menu last showed it.
func (ms *MenuService) Refresh(ctx context.Context, messageID string) (*models.Report, *models.MenuRecord, error) {
	rec, err := ms.menus.Get(ctx, messageID)
	if err != nil {
		return nil, nil, err
	}
	if rec == nil {
		return nil, nil, ErrMenuNotFound
	}
	if err := ms.snapshot.EnsureLatest(ctx); err != nil {
		return nil, rec, err
	}
	report, err := ms.reports.Build(ctx, ReportOptions{IncludeGraph: rec.IncludeGraph, RangeHours: rec.RangeHours})
	if err != nil {
		return nil, rec, err
	}
	return report, rec, nil
}
