package report

import "github.com/jass/bff/internal/domain/shared"

// Kind identifies a printable listing
type Kind string

const (
	KindClients         Kind = "clients"
	KindPayments        Kind = "payments"
	KindFares           Kind = "fares"
	KindRoutes          Kind = "routes"
	KindSchedules       Kind = "schedules"
	KindPrograms        Kind = "programs"
	KindWaterBoxes      Kind = "water-boxes"
	KindQualityTests    Kind = "quality-tests"
	KindChlorineRecords Kind = "chlorine-records"
	KindOrganizations   Kind = "organizations"
)

// AllKinds returns every supported report kind
func AllKinds() []Kind {
	return []Kind{
		KindClients, KindPayments, KindFares, KindRoutes, KindSchedules,
		KindPrograms, KindWaterBoxes, KindQualityTests, KindChlorineRecords, KindOrganizations,
	}
}

// ParseKind validates a kind taken from a URL
func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", shared.ErrInvalidReport
}

// Title returns the heading printed on the report
func (k Kind) Title() string {
	switch k {
	case KindClients:
		return "Reporte de Clientes"
	case KindPayments:
		return "Reporte de Pagos"
	case KindFares:
		return "Reporte de Tarifas"
	case KindRoutes:
		return "Reporte de Rutas de Distribución"
	case KindSchedules:
		return "Reporte de Horarios de Distribución"
	case KindPrograms:
		return "Reporte de Programas de Distribución"
	case KindWaterBoxes:
		return "Reporte de Cajas de Agua"
	case KindQualityTests:
		return "Reporte de Análisis de Calidad"
	case KindChlorineRecords:
		return "Reporte de Control de Cloro"
	case KindOrganizations:
		return "Reporte de Organizaciones"
	default:
		return string(k)
	}
}

// Format is the output representation of a report
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// ParseFormat defaults to PDF when s is empty
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatPDF:
		return FormatPDF, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", shared.NewDomainError("INVALID_INPUT", "Formato de reporte no soportado: "+s)
}

// ContentType returns the MIME type of the format
func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "application/pdf"
}

// Extension returns the file extension without dot
func (f Format) Extension() string {
	return string(f)
}
