package capture

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	marotoimages "github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// A4 in mm, less the page margins
const (
	pdfMargin        = 10
	pdfContentWidth  = 210 - 2*pdfMargin
	pdfContentHeight = 297 - 2*pdfMargin
)

// PDFFilename is Filename with a .pdf extension.
func PDFFilename() string {
	return strings.TrimSuffix(Filename, ".png") + ".pdf"
}

// EncodePDF places a captured PNG on a single A4 page, scaled to the page
// width while keeping its aspect ratio.
func EncodePDF(pngBytes []byte) ([]byte, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return nil, fmt.Errorf("cannot embed an empty image")
	}

	height := float64(pdfContentWidth) * float64(cfg.Height) / float64(cfg.Width)
	height = min(height, pdfContentHeight)

	m := maroto.New(config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(pdfMargin).
		WithRightMargin(pdfMargin).
		WithTopMargin(pdfMargin).
		WithBottomMargin(pdfMargin).
		Build())

	imageCol := col.New(12).Add(marotoimages.NewFromBytes(pngBytes, extension.Png))
	m.AddRow(height, imageCol)

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	data := document.GetBytes()

	if _, err := PDFPageCount(data); err != nil {
		return nil, err
	}
	return data, nil
}

// PDFPageCount validates data with pdfcpu and returns its page count.
func PDFPageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), model.NewDefaultConfiguration())
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF: %w", err)
	}
	return n, nil
}
