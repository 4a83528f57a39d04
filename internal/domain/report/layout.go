package report

import (
	"strings"

	"github.com/jass/bff/internal/domain/shared"
)

// PaperSize represents the paper size of a printed report
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"
	PaperSizeLetter PaperSize = "LETTER"
	PaperSizeLegal  PaperSize = "LEGAL"
)

// Dimensions returns the paper dimensions in millimeters (width, height)
func (p PaperSize) Dimensions() (width, height int) {
	switch p {
	case PaperSizeLetter:
		return 216, 279
	case PaperSizeLegal:
		return 216, 356
	default:
		return 210, 297
	}
}

// Orientation represents the page orientation
type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// Margins represents the page margins in millimeters
type Margins struct {
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
}

// DefaultMargins returns the margins used by every listing report
func DefaultMargins() Margins {
	return Margins{Top: 12, Right: 10, Bottom: 12, Left: 10}
}

// Layout is the page setup of a report
type Layout struct {
	PaperSize   PaperSize
	Orientation Orientation
	Margins     Margins
}

// DefaultLayout is A4 landscape, wide enough for the listing tables
func DefaultLayout() Layout {
	return Layout{
		PaperSize:   PaperSizeA4,
		Orientation: OrientationLandscape,
		Margins:     DefaultMargins(),
	}
}

// ParseLayout builds a layout from query values. Empty values keep the
// default.
func ParseLayout(paper, orientation string) (Layout, error) {
	layout := DefaultLayout()
	switch p := PaperSize(strings.ToUpper(strings.TrimSpace(paper))); p {
	case "":
	case PaperSizeA4, PaperSizeLetter, PaperSizeLegal:
		layout.PaperSize = p
	default:
		return Layout{}, shared.NewDomainError("INVALID_INPUT", "Tamaño de papel no soportado: "+paper)
	}
	switch o := Orientation(strings.ToUpper(strings.TrimSpace(orientation))); o {
	case "":
	case OrientationPortrait, OrientationLandscape:
		layout.Orientation = o
	default:
		return Layout{}, shared.NewDomainError("INVALID_INPUT", "Orientación no soportada: "+orientation)
	}
	return layout, nil
}
