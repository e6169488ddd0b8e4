package printer

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/vijay-1103/transmittal-craft/internal/models"
)

// MaxLabels bounds a single label sheet request
const MaxLabels = 1000

var ErrTooManyLabels = errors.New("too many labels")

// LabelConfig describes the sticker sheet used for hardcopy document sets
type LabelConfig struct {
	Cols       int     `json:"cols"`
	Rows       int     `json:"rows"`
	MarginTop  float64 `json:"marginTop"`
	MarginLeft float64 `json:"marginLeft"`
	GapX       float64 `json:"gapX"`
	GapY       float64 `json:"gapY"`
}

// DefaultLabelConfig is a 3x7 A4 sheet
func DefaultLabelConfig() LabelConfig {
	return LabelConfig{Cols: 3, Rows: 7, MarginTop: 10, MarginLeft: 5, GapX: 2, GapY: 0}
}

// LabelContent is the QR payload for one physical copy of a document
func LabelContent(t *models.Transmittal, doc models.DocumentItem) string {
	ref := t.ID
	if t.TransmittalNumber != nil {
		ref = *t.TransmittalNumber
	}
	return fmt.Sprintf("%s/%s/R%d", ref, doc.DocumentNo, doc.Revision)
}

// LabelCount is the number of stickers t needs, one per physical copy. Counting
// stops once it passes MaxLabels.
func LabelCount(t *models.Transmittal) int {
	n := 0
	for _, doc := range t.Documents {
		if doc.Copies > 0 {
			n += doc.Copies
		}
		if n > MaxLabels {
			break
		}
	}
	return n
}

// GenerateLabelsPDF prints one QR label per copy of every document in t
func GenerateLabelsPDF(t *models.Transmittal, cfg LabelConfig) ([]byte, error) {
	if LabelCount(t) > MaxLabels {
		return nil, fmt.Errorf("%w: transmittal %s needs more than %d", ErrTooManyLabels, t.ID, MaxLabels)
	}
	if cfg.Cols <= 0 || cfg.Rows <= 0 {
		def := DefaultLabelConfig()
		cfg.Cols, cfg.Rows = def.Cols, def.Rows
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetFont("Arial", "B", 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageWidth, pageHeight := 210.0, 297.0
	totalGapX := float64(cfg.Cols-1) * cfg.GapX
	totalGapY := float64(cfg.Rows-1) * cfg.GapY
	availW := pageWidth - (cfg.MarginLeft * 2)
	availH := pageHeight - (cfg.MarginTop * 2)
	labelW := (availW - totalGapX) / float64(cfg.Cols)
	labelH := (availH - totalGapY) / float64(cfg.Rows)
	labelsPerPage := cfg.Cols * cfg.Rows

	imgOptions := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}

	i := 0
	for _, doc := range t.Documents {
		content := LabelContent(t, doc)
		qrPng, err := qrcode.Encode(content, qrcode.Low, 256)
		if err != nil {
			return nil, err
		}
		imgName := fmt.Sprintf("qr_%s_%d", doc.DocumentNo, doc.Revision)
		pdf.RegisterImageOptionsReader(imgName, imgOptions, bytes.NewReader(qrPng))

		for copyNo := 1; copyNo <= doc.Copies; copyNo++ {
			if i%labelsPerPage == 0 {
				pdf.AddPage()
			}
			indexOnPage := i % labelsPerPage
			col := indexOnPage % cfg.Cols
			row := indexOnPage / cfg.Cols
			x := cfg.MarginLeft + float64(col)*(labelW+cfg.GapX)
			y := cfg.MarginTop + float64(row)*(labelH+cfg.GapY)

			// QR on the left, text on the right
			size := labelH * 0.8
			if size > labelW/2 {
				size = labelW / 2
			}
			pdf.ImageOptions(imgName, x+1, y+(labelH-size)/2, size, size, false, imgOptions, 0, "")

			textX := x + size + 2
			textW := labelW - size - 3
			pdf.SetXY(textX, y+4)
			pdf.SetFontSize(8)
			pdf.CellFormat(textW, 4, tr(doc.DocumentNo), "", 2, "L", false, 0, "")
			pdf.SetFontSize(6)
			pdf.CellFormat(textW, 3, tr(fmt.Sprintf("Rev %d  Copy %d/%d", doc.Revision, copyNo, doc.Copies)), "", 2, "L", false, 0, "")
			if t.TransmittalNumber != nil {
				pdf.CellFormat(textW, 3, *t.TransmittalNumber, "", 2, "L", false, 0, "")
			}
			i++
		}
	}

	if i == 0 {
		return nil, fmt.Errorf("transmittal %s has no document copies to label", t.ID)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
