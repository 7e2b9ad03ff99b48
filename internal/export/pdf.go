package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/saludlab/sf36-survey-backend/internal/profile"
	"github.com/saludlab/sf36-survey-backend/internal/scoring"
)

// PDF layout constants, in millimetres on an A4 portrait page.
const (
	pdfLineHeight = 8.0
	pdfTopMargin  = 10.0
	pdfPageLimit  = 285.0 // y beyond this forces a page break
)

// ProfilePDF renders one profile's assessment history as a paginated
// document: a two-line header, then per assessment the timestamp followed by
// one "KEY: score (n=N)" line per scale. "-" marks scales with no answered
// items.
func ProfilePDF(p profile.Profile, scaleKeys []string) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	// Fixed creation date so identical input yields identical bytes.
	doc.SetCreationDate(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	tr := doc.UnicodeTranslatorFromDescriptor("") // Spanish accents on core fonts
	doc.AddPage()
	y := pdfTopMargin

	// ensureSpace starts a new page when the next block would run past the
	// bottom, returning the reset cursor.
	ensureSpace := func(y, need float64) float64 {
		if y+need > pdfPageLimit {
			doc.AddPage()
			return pdfTopMargin
		}
		return y
	}

	name := p.User.Name
	if name == "" {
		name = "(sin nombre)"
	}

	doc.SetFont("Helvetica", "", 12)
	doc.Text(10, y, tr(fmt.Sprintf("Perfil: %s (%s)", name, p.User.ID)))
	y += pdfLineHeight
	doc.Text(10, y, tr(fmt.Sprintf("Evaluaciones: %d", len(p.Assessments))))
	y += pdfLineHeight * 1.5

	for idx, a := range p.Assessments {
		y = ensureSpace(y, 20)
		doc.SetFontSize(11)
		doc.Text(10, y, tr(fmt.Sprintf("%d. %s", idx+1, a.Timestamp)))
		y += pdfLineHeight

		doc.SetFontSize(10)
		for _, key := range scaleKeys {
			cell := "-"
			n := "-"
			if s, ok := a.Scores[key]; ok {
				n = fmt.Sprintf("%d", s.N)
				if v, scored := scoring.RoundScore(s.Score); scored {
					cell = fmt.Sprintf("%d", v)
				}
			}
			y = ensureSpace(y, pdfLineHeight)
			doc.Text(14, y, tr(fmt.Sprintf("%s: %s (n=%s)", key, cell, n)))
			y += pdfLineHeight
		}

		y += pdfLineHeight * 0.5
		y = ensureSpace(y, pdfLineHeight)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("export: profile pdf: %w", err)
	}
	return buf.Bytes(), nil
}
