package report

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/go-pdf/fpdf"
	"github.com/itgc-audit/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCompile(t *testing.T) {
	snap := Snapshot{
		GeneratedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		Systems: []models.AuditedSystem{
			{ID: 1, Name: "Payroll", Description: "HR payroll"},
			{ID: 2, Name: "Ledger", Description: strings.Repeat("general ledger ", 40)},
		},
		AccessEvents: []models.AccessEvent{
			{ID: 1, ActorUsername: strPtr("alice"), EventType: models.AccessLoginSuccess, NetworkAddress: strPtr("1.2.3.4")},
			{ID: 2, EventType: models.AccessLoginFail},
		},
	}

	out, err := NewCompiler().Compile(snap)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")), "output is not a PDF")

	plain, err := (&Compiler{}).Compile(snap)
	require.NoError(t, err)
	for _, want := range []string{
		"ITGC COMPLIANCE REPORT",
		"Generated on: 2026-03-01 09:30:00",
		"Systems Being Audited",
		"Payroll",
		"Recent Access Events",
		"Successful Login",
		"Failed Login",
		"1.2.3.4",
		"N/A",
	} {
		assert.True(t, bytes.Contains(plain, []byte(want)), "missing %q", want)
	}
	assert.False(t, bytes.Contains(plain, []byte(models.AccessLoginSuccess)), "event code printed instead of label")
	assert.False(t, bytes.Contains(plain, []byte(models.AccessLoginFail)), "event code printed instead of label")
}

func TestCompileAccentedText(t *testing.T) {
	snap := Snapshot{
		GeneratedAt: time.Now(),
		Systems: []models.AuditedSystem{
			{ID: 1, Name: "Système", Description: strings.Repeat("é", 300)},
		},
		AccessEvents: []models.AccessEvent{
			{ID: 1, ActorUsername: strPtr("zoë"), EventType: models.AccessLogout},
		},
	}

	out, err := (&Compiler{}).Compile(snap)
	require.NoError(t, err)
	assert.True(t, bytes.Contains(out, []byte("Syst\xe8me")))
	assert.True(t, bytes.Contains(out, []byte("zo\xeb")))
	assert.True(t, bytes.Contains(out, []byte("\xe9\xe9\xe9...")))
	assert.False(t, bytes.Contains(out, []byte("\xef\xbf\xbd")), "replacement character in output")
}

func TestCompileLargeDescription(t *testing.T) {
	snap := Snapshot{
		GeneratedAt: time.Now(),
		Systems: []models.AuditedSystem{
			{ID: 1, Name: "Archive", Description: strings.Repeat("a", 200_000)},
		},
	}

	start := time.Now()
	out, err := NewCompiler().Compile(snap)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func newMeasuringPDF() (*fpdf.Fpdf, func(string) string) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 9)
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

func TestFit(t *testing.T) {
	pdf, tr := newMeasuringPDF()

	assert.Equal(t, "Payroll", fit(pdf, tr, "Payroll", 50))
	assert.Equal(t, "caf\xe9", fit(pdf, tr, "café", 50))

	got := fit(pdf, tr, strings.Repeat("é", 200), 20)
	require.True(t, strings.HasSuffix(got, "..."))
	body := strings.TrimSuffix(got, "...")
	assert.NotEmpty(t, body)
	assert.Equal(t, strings.Repeat("\xe9", len(body)), body)
	assert.LessOrEqual(t, pdf.GetStringWidth(got), 20.0)

	long := fit(pdf, tr, strings.Repeat("i", 100_000), 130)
	assert.True(t, strings.HasSuffix(long, "..."))
	assert.LessOrEqual(t, pdf.GetStringWidth(long), 130.0)
	assert.True(t, utf8.ValidString(long))
}

func TestCompileEmpty(t *testing.T) {
	out, err := NewCompiler().Compile(Snapshot{GeneratedAt: time.Now()})
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}

func TestOrNA(t *testing.T) {
	assert.Equal(t, "N/A", orNA(nil))
	assert.Equal(t, "N/A", orNA(strPtr("")))
	assert.Equal(t, "10.0.0.5", orNA(strPtr("10.0.0.5")))
}
