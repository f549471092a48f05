package infra

import (
	"fmt"

	"bishuteria/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the receipt journal and migrates it.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates the recibos table and the partial index used to
// find receipts whose PDF is still pending.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.Recibo{}); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	patches := []string{
		`CREATE INDEX IF NOT EXISTS idx_recibos_pdf_pendiente
		    ON recibos (created_at)
		    WHERE estado_pdf = 'pendiente'`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
