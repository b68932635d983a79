package report

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/itgc-audit/backend/internal/models"
)

const (
	Filename    = "itgc_compliance_report.pdf"
	ContentType = "application/pdf"
)

const (
	generatedLayout = "2006-01-02 15:04:05"
	eventLayout     = "2006-01-02 15:04"
	notAvailable    = "N/A"
	ellipsis        = "..."
)

// maxCellRunes bounds the text measured for one cell. The widest column holds
// far fewer characters even in the narrowest glyphs.
const maxCellRunes = 256

// Snapshot is the read-only input of one report.
type Snapshot struct {
	GeneratedAt  time.Time
	Systems      []models.AuditedSystem
	AccessEvents []models.AccessEvent
}

type Compiler struct {
	compress bool
}

func NewCompiler() *Compiler {
	return &Compiler{compress: true}
}

// Compile renders snap as an A4 PDF. On error no bytes are returned.
func (c *Compiler) Compile(snap Snapshot) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(c.compress)
	pdf.SetTitle("ITGC Compliance Report", true)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "ITGC COMPLIANCE REPORT", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated on: "+snap.GeneratedAt.Format(generatedLayout), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	systemRows := make([][]string, 0, len(snap.Systems))
	for _, s := range snap.Systems {
		systemRows = append(systemRows, []string{s.Name, s.Description})
	}
	section(pdf, tr, "Systems Being Audited",
		[]string{"System Name", "Description"},
		[]float64{60, 130},
		systemRows)

	eventRows := make([][]string, 0, len(snap.AccessEvents))
	for _, e := range snap.AccessEvents {
		eventRows = append(eventRows, []string{
			e.CreatedAt.Format(eventLayout),
			orNA(e.ActorUsername),
			models.AccessEventLabel(e.EventType),
			orNA(e.NetworkAddress),
		})
	}
	section(pdf, tr, "Recent Access Events",
		[]string{"Timestamp", "User", "Event Type", "IP Address"},
		[]float64{40, 45, 60, 45},
		eventRows)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// section draws a titled table. Cell values are UTF-8 and are encoded with tr
// after fitting.
func section(pdf *fpdf.Fpdf, tr func(string) string, title string, header []string, widths []float64, rows [][]string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(220, 220, 220)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		for i, v := range row {
			pdf.CellFormat(widths[i], 6, fit(pdf, tr, v, widths[i]-2), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(6)
}

// fit encodes s with tr, cutting it to the longest rune prefix that fits width
// together with an ellipsis.
func fit(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	r := []rune(s)
	clipped := len(r) > maxCellRunes
	if clipped {
		r = r[:maxCellRunes]
	}
	if !clipped {
		if out := tr(s); pdf.GetStringWidth(out) <= width {
			return out
		}
	}

	n := sort.Search(len(r)+1, func(i int) bool {
		return pdf.GetStringWidth(tr(string(r[:i]))+ellipsis) > width
	}) - 1
	if n < 0 {
		n = 0
	}
	return tr(string(r[:n])) + ellipsis
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return notAvailable
	}
	return *s
}
