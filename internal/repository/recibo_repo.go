package repository

import (
	"context"
	"errors"
	"time"

	"bishuteria/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReciboRepository interface {
	Create(ctx context.Context, r *model.Recibo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Recibo, error)
	Update(ctx context.Context, r *model.Recibo) error
	// ListPDFPendientes returns receipts still waiting for their PDF that were
	// created before the given instant, oldest first.
	ListPDFPendientes(ctx context.Context, antesDe time.Time, limit int) ([]model.Recibo, error)
}

type reciboRepo struct{ db *gorm.DB }

func NewReciboRepository(db *gorm.DB) ReciboRepository {
	return &reciboRepo{db: db}
}

func (r *reciboRepo) Create(ctx context.Context, rec *model.Recibo) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *reciboRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Recibo, error) {
	var rec model.Recibo
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *reciboRepo) Update(ctx context.Context, rec *model.Recibo) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *reciboRepo) ListPDFPendientes(ctx context.Context, antesDe time.Time, limit int) ([]model.Recibo, error) {
	var out []model.Recibo
	err := r.db.WithContext(ctx).
		Where("estado_pdf = ? AND created_at < ?", model.ReciboPDFPendiente, antesDe).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
