package report

import (
	"strings"
	"time"

	"github.com/jass/bff/internal/domain/shared"
)

// Tone is the colour applied to a cell
type Tone string

const (
	ToneNone    Tone = ""
	ToneDanger  Tone = "danger"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
)

// ToneForStatus colours a status label or code. Unknown statuses get no tone.
func ToneForStatus(status string) Tone {
	label := shared.StatusLabel(status)
	switch strings.ToLower(label) {
	case "crítico", "inactivo", "vencido", "cancelado", "retrasado":
		return ToneDanger
	case "aceptable", "activo", "pagado", "completado", "disponible", "asignado":
		return ToneSuccess
	case "alerta", "pendiente", "en proceso", "planificado", "suspendido", "en mantenimiento":
		return ToneWarning
	default:
		return ToneNone
	}
}

// Align is the horizontal alignment of a column
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Column describes one table column. Width is a CSS width such as "18%".
type Column struct {
	Header string
	Width  string
	Align  Align
}

// Cell is one rendered value
type Cell struct {
	Text string
	Tone Tone
}

// Text returns an uncoloured cell
func Text(s string) Cell {
	return Cell{Text: s}
}

// Status returns a cell holding the Spanish label of status, coloured by it
func Status(status string) Cell {
	return Cell{Text: shared.StatusLabel(status), Tone: ToneForStatus(status)}
}

// SummaryItem is a label/value pair printed under the table
type SummaryItem struct {
	Label string
	Value string
}

// Table is a printable listing
type Table struct {
	Kind             Kind
	Title            string
	OrganizationName string
	GeneratedBy      string
	GeneratedAt      time.Time
	Columns          []Column
	Rows             [][]Cell
	Summary          []SummaryItem
	Layout           Layout
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.Rows)
}
