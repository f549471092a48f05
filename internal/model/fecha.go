package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

const (
	formatoSoloFecha = "2006-01-02"
	formatoSinZona   = "2006-01-02T15:04:05.999999999"
)

// Timestamps without an offset. Parse accepts fractional seconds after the
// seconds field even when the layout omits them.
var formatosSinZona = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Fecha accepts full timestamps, timestamps without an offset and date-only
// values ("2024-03-01"). SoloFecha and SinZona keep the wall clock so the
// value is read in whatever location it is evaluated, like the POS screens
// do with their local clock.
type Fecha struct {
	time.Time
	SoloFecha bool
	SinZona   bool
}

// NuevaFecha builds a date-only Fecha.
func NuevaFecha(anio int, mes time.Month, dia int) Fecha {
	return Fecha{Time: time.Date(anio, mes, dia, 0, 0, 0, 0, time.UTC), SoloFecha: true}
}

// NuevoInstante builds a Fecha pinned to an exact instant.
func NuevoInstante(t time.Time) Fecha {
	return Fecha{Time: t}
}

// En returns f as an instant, reading a zoneless wall clock in loc.
func (f Fecha) En(loc *time.Location) time.Time {
	if !f.SinZona && !f.SoloFecha {
		return f.Time
	}
	y, m, d := f.Date()
	return time.Date(y, m, d, f.Hour(), f.Minute(), f.Second(), f.Nanosecond(), loc)
}

// InicioEn returns the first instant covered by f in loc.
func (f Fecha) InicioEn(loc *time.Location) time.Time {
	if !f.SoloFecha {
		return f.En(loc)
	}
	y, m, d := f.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// FinEn returns the last instant covered by f in loc.
func (f Fecha) FinEn(loc *time.Location) time.Time {
	if !f.SoloFecha {
		return f.En(loc)
	}
	y, m, d := f.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), loc)
}

func (f *Fecha) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = Fecha{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("fecha: %w", err)
	}
	if s == "" {
		*f = Fecha{}
		return nil
	}
	if t, err := time.Parse(formatoSoloFecha, s); err == nil {
		*f = Fecha{Time: t, SoloFecha: true}
		return nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*f = Fecha{Time: t}
		return nil
	}
	for _, layout := range formatosSinZona {
		if t, err := time.Parse(layout, s); err == nil {
			*f = Fecha{Time: t, SinZona: true}
			return nil
		}
	}
	return fmt.Errorf("fecha: formato no reconocido %q", s)
}

func (f Fecha) MarshalJSON() ([]byte, error) {
	if f.IsZero() {
		return []byte("null"), nil
	}
	if f.SoloFecha {
		return json.Marshal(f.Format(formatoSoloFecha))
	}
	if f.SinZona {
		return json.Marshal(f.Format(formatoSinZona))
	}
	return json.Marshal(f.Format(time.RFC3339Nano))
}
