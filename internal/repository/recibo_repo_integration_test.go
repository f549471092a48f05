//go:build integration

package repository

// Runs against a real Postgres started with testcontainers:
//   go test -tags integration ./internal/repository/...

import (
	"context"
	"testing"
	"time"

	"bishuteria/internal/infra"
	"bishuteria/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

func newPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("bishuteria_test"),
		tcPostgres.WithUsername("bishuteria"),
		tcPostgres.WithPassword("bishuteria"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// NewDatabase migrates; a second run must be a no-op.
	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	return db
}

func nuevoRecibo(sucursal int) *model.Recibo {
	venta := 321
	return &model.Recibo{
		VentaID:        &venta,
		UsuarioID:      5,
		SucursalID:     sucursal,
		SucursalNombre: "Centro",
		MontoTotal:     decimal.RequireFromString("145.50"),
		Texto:          "RECIBO",
		Datos:          `{"venta":{"id":321}}`,
		EstadoPDF:      model.ReciboPDFPendiente,
	}
}

func TestReciboRepo_CreateFindUpdate(t *testing.T) {
	repo := NewReciboRepository(newPostgres(t))
	ctx := context.Background()

	rec := nuevoRecibo(1)
	require.NoError(t, repo.Create(ctx, rec))
	assert.NotEqual(t, uuid.Nil, rec.ID)

	got, err := repo.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("145.50").Equal(got.MontoTotal))
	assert.Equal(t, model.ReciboPDFPendiente, got.EstadoPDF)

	ruta := "recibo_" + rec.ID.String() + ".pdf"
	got.EstadoPDF = model.ReciboPDFGenerado
	got.PDFPath = &ruta
	got.Intentos = 1
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReciboPDFGenerado, got.EstadoPDF)
	require.NotNil(t, got.PDFPath)
	assert.Equal(t, ruta, *got.PDFPath)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReciboRepo_ListPDFPendientes(t *testing.T) {
	db := newPostgres(t)
	repo := NewReciboRepository(db)
	ctx := context.Background()

	viejo := nuevoRecibo(1)
	viejo.CreatedAt = time.Now().Add(-10 * time.Minute)
	reciente := nuevoRecibo(1)
	generado := nuevoRecibo(2)
	generado.CreatedAt = time.Now().Add(-20 * time.Minute)
	generado.EstadoPDF = model.ReciboPDFGenerado
	masViejo := nuevoRecibo(2)
	masViejo.CreatedAt = time.Now().Add(-30 * time.Minute)
	for _, r := range []*model.Recibo{viejo, reciente, generado, masViejo} {
		require.NoError(t, repo.Create(ctx, r))
	}

	out, err := repo.ListPDFPendientes(ctx, time.Now().Add(-2*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, masViejo.ID, out[0].ID)
	assert.Equal(t, viejo.ID, out[1].ID)

	out, err = repo.ListPDFPendientes(ctx, time.Now(), 1)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}
