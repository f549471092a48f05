package infra

// pdf.go: thermal receipt PDF (80 x 200 mm, Courier) rendered with
// go-pdf/fpdf from an already laid-out recibo.Documento. Layout decisions
// (widths, truncation, alignment) belong to the recibo package; this file
// only maps renglones onto the page.

import (
	"fmt"
	"os"
	"path/filepath"

	"bishuteria/internal/recibo"

	"github.com/go-pdf/fpdf"
)

const (
	reciboAnchoMM   = 80
	reciboAltoMM    = 200
	reciboMargenMM  = 5
	reciboRenglonMM = 5
)

// GenerateReciboPDF writes recibo_{id}.pdf under storagePath and returns the
// file name relative to storagePath.
func GenerateReciboPDF(id string, doc recibo.Documento, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("recibo_%s.pdf", id)
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: reciboAnchoMM, Ht: reciboAltoMM},
	})
	pdf.SetMargins(reciboMargenMM, reciboMargenMM, reciboMargenMM)
	pdf.SetAutoPageBreak(true, reciboMargenMM)
	pdf.AddPage()

	// Core fonts are cp1252; "¡" and accented names need translating.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	contentW := float64(reciboAnchoMM - 2*reciboMargenMM)

	for _, r := range doc.Renglones {
		style := ""
		if r.Negrita {
			style = "B"
		}
		size := 10.0
		if r.Grande {
			size = 12
		}
		pdf.SetFont("Courier", style, size)

		align := "L"
		if r.Centrado {
			align = "C"
		}
		pdf.CellFormat(contentW, reciboRenglonMM, tr(r.Texto), "", 1, align, false, 0, "")
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return fileName, nil
}
