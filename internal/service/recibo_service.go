package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"bishuteria/internal/dto"
	"bishuteria/internal/infra"
	"bishuteria/internal/model"
	"bishuteria/internal/recibo"
	"bishuteria/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var ErrPDFFallido = errors.New("no se pudo generar el PDF del recibo")

// EncoladorRecibos queues PDF rendering. worker.Dispatcher implements it.
type EncoladorRecibos interface {
	EncolarReciboPDF(ctx context.Context, reciboID uuid.UUID) error
}

type ReciboService interface {
	// Registrar journals the receipt of a confirmed sale and queues its PDF.
	Registrar(ctx context.Context, s *model.Sesion, sucursalID int, d recibo.Datos) (*model.Recibo, error)
	Obtener(ctx context.Context, s *model.Sesion, id uuid.UUID) (*dto.ReciboResponse, error)
	// RutaPDF returns the absolute path of a generated PDF.
	RutaPDF(ctx context.Context, s *model.Sesion, id uuid.UUID) (string, error)

	// Used by the worker.
	GenerarPDF(ctx context.Context, id uuid.UUID) error
	MarcarPDFFallido(ctx context.Context, id uuid.UUID, motivo string) error
	ReencolarPendientes(ctx context.Context, antesDe time.Time, limit int) (int, error)
}

type reciboService struct {
	repo       repository.ReciboRepository
	encolador  EncoladorRecibos
	storage    string
	loc        *time.Location
	generarPDF func(id string, doc recibo.Documento, storagePath string) (string, error)
}

// NewReciboService accepts a nil encolador: receipts are then journaled
// with a pending PDF and picked up by the next sweep.
func NewReciboService(repo repository.ReciboRepository, encolador EncoladorRecibos, storagePath string, loc *time.Location) ReciboService {
	if loc == nil {
		loc = time.UTC
	}
	return &reciboService{
		repo:       repo,
		encolador:  encolador,
		storage:    storagePath,
		loc:        loc,
		generarPDF: infra.GenerateReciboPDF,
	}
}

func (s *reciboService) Registrar(ctx context.Context, sesion *model.Sesion, sucursalID int, d recibo.Datos) (*model.Recibo, error) {
	doc := recibo.Construir(d, s.loc)
	datos, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("recibo: serializar datos: %w", err)
	}

	rec := &model.Recibo{
		UsuarioID:      sesion.UsuarioID,
		SucursalID:     sucursalID,
		SucursalNombre: d.Venta.Sucursal.Nombre,
		SinRecibo:      d.SinRecibo,
		MontoTotal:     d.Venta.MontoTotal,
		Texto:          doc.Texto(),
		Datos:          string(datos),
		EstadoPDF:      model.ReciboPDFPendiente,
	}
	if d.Venta.ID != 0 {
		id := d.Venta.ID
		rec.VentaID = &id
	}
	if rec.SucursalNombre == "" {
		rec.SucursalNombre = sesion.SucursalNombre
	}
	if !d.SinRecibo {
		if nombre := clienteNombre(d); nombre != "" {
			rec.ClienteNombre = &nombre
		}
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("recibo: guardar: %w", err)
	}

	if s.encolador != nil {
		if err := s.encolador.EncolarReciboPDF(ctx, rec.ID); err != nil {
			log.Warn().Err(err).Str("recibo_id", rec.ID.String()).Msg("recibo: no se pudo encolar el PDF")
		}
	}
	return rec, nil
}

func (s *reciboService) Obtener(ctx context.Context, sesion *model.Sesion, id uuid.UUID) (*dto.ReciboResponse, error) {
	rec, err := s.buscar(ctx, sesion, id)
	if err != nil {
		return nil, err
	}
	return &dto.ReciboResponse{
		ID:             rec.ID.String(),
		VentaID:        rec.VentaID,
		SucursalNombre: rec.SucursalNombre,
		ClienteNombre:  rec.ClienteNombre,
		SinRecibo:      rec.SinRecibo,
		MontoTotal:     rec.MontoTotal,
		Texto:          rec.Texto,
		EstadoPDF:      rec.EstadoPDF,
		CreatedAt:      rec.CreatedAt.In(s.loc).Format(time.RFC3339),
	}, nil
}

func (s *reciboService) RutaPDF(ctx context.Context, sesion *model.Sesion, id uuid.UUID) (string, error) {
	rec, err := s.buscar(ctx, sesion, id)
	if err != nil {
		return "", err
	}
	switch {
	case rec.EstadoPDF == model.ReciboPDFError:
		return "", ErrPDFFallido
	case rec.EstadoPDF != model.ReciboPDFGenerado || rec.PDFPath == nil:
		return "", ErrPDFPendiente
	}
	return filepath.Join(s.storage, *rec.PDFPath), nil
}

// buscar hides receipts of other branches from non-administrators.
func (s *reciboService) buscar(ctx context.Context, sesion *model.Sesion, id uuid.UUID) (*model.Recibo, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReciboNoEncontrado
	}
	if err != nil {
		return nil, err
	}
	if !sesion.EsAdministrador() && rec.SucursalID != sesion.SucursalID {
		return nil, ErrReciboNoEncontrado
	}
	return rec, nil
}

// ── Worker side ───────────────────────────────────────────────────────────────

func (s *reciboService) GenerarPDF(ctx context.Context, id uuid.UUID) error {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("recibo %s: %w", id, err)
	}
	if rec.EstadoPDF == model.ReciboPDFGenerado {
		return nil
	}

	var d recibo.Datos
	if err := json.Unmarshal([]byte(rec.Datos), &d); err != nil {
		return fmt.Errorf("recibo %s: datos ilegibles: %w", id, err)
	}

	rec.Intentos++
	nombre, genErr := s.generarPDF(rec.ID.String(), recibo.Construir(d, s.loc), s.storage)
	if genErr != nil {
		msg := genErr.Error()
		rec.UltimoError = &msg
		if err := s.repo.Update(ctx, rec); err != nil {
			log.Error().Err(err).Str("recibo_id", id.String()).Msg("recibo: no se pudo registrar el intento")
		}
		return genErr
	}

	rec.PDFPath = &nombre
	rec.EstadoPDF = model.ReciboPDFGenerado
	rec.UltimoError = nil
	return s.repo.Update(ctx, rec)
}

func (s *reciboService) MarcarPDFFallido(ctx context.Context, id uuid.UUID, motivo string) error {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	rec.EstadoPDF = model.ReciboPDFError
	rec.UltimoError = &motivo
	return s.repo.Update(ctx, rec)
}

func (s *reciboService) ReencolarPendientes(ctx context.Context, antesDe time.Time, limit int) (int, error) {
	if s.encolador == nil {
		return 0, nil
	}
	pendientes, err := s.repo.ListPDFPendientes(ctx, antesDe, limit)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, rec := range pendientes {
		if err := s.encolador.EncolarReciboPDF(ctx, rec.ID); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func clienteNombre(d recibo.Datos) string {
	if d.Cliente != nil && strings.TrimSpace(d.Cliente.NombreCompleto) != "" {
		return d.Cliente.NombreCompleto
	}
	if d.Venta.Cliente != nil {
		return strings.TrimSpace(d.Venta.Cliente.NombreCompleto)
	}
	return ""
}
