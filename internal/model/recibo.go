package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Recibo PDF states.
const (
	ReciboPDFPendiente = "pendiente"
	ReciboPDFGenerado  = "generado"
	ReciboPDFError     = "error"
)

// Recibo is the journal entry written after every successful checkout.
// Texto holds the fixed-width rendering; Datos the sale as returned by the
// POS API (JSON) so the PDF worker can re-render without calling it again.
type Recibo struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	VentaID        *int            `gorm:"index" json:"venta_id,omitempty"`
	UsuarioID      int             `gorm:"not null;index" json:"id_usuario"`
	SucursalID     int             `gorm:"not null;index" json:"id_sucursal"`
	SucursalNombre string          `gorm:"type:varchar(120)" json:"sucursal_nombre"`
	ClienteNombre  *string         `gorm:"type:varchar(200)" json:"cliente_nombre,omitempty"`
	SinRecibo      bool            `gorm:"not null;default:false" json:"sin_recibo"`
	MontoTotal     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"monto_total"`
	Texto          string          `gorm:"type:text;not null" json:"texto"`
	Datos          string          `gorm:"type:jsonb;not null" json:"-"`
	EstadoPDF      string          `gorm:"type:varchar(20);not null;default:'pendiente';column:estado_pdf" json:"estado_pdf"`
	// PDFPath is relative to PDF_STORAGE_PATH
	PDFPath     *string   `gorm:"column:pdf_path" json:"-"`
	Intentos    int       `gorm:"not null;default:0" json:"intentos"`
	UltimoError *string   `json:"ultimo_error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Recibo) TableName() string { return "recibos" }
