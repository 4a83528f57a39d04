package shared

import "strings"

// statusLabels maps the upstream status codes to the labels shown in the
// administration views and reports.
var statusLabels = map[string]string{
	"ACTIVE":       "Activo",
	"INACTIVE":     "Inactivo",
	"SUSPENDED":    "Suspendido",
	"PENDING":      "Pendiente",
	"PAID":         "Pagado",
	"OVERDUE":      "Vencido",
	"CANCELLED":    "Cancelado",
	"COMPLETED":    "Completado",
	"IN_PROGRESS":  "En proceso",
	"PLANNED":      "Planificado",
	"DELAYED":      "Retrasado",
	"ASSIGNED":     "Asignado",
	"AVAILABLE":    "Disponible",
	"MAINTENANCE":  "En mantenimiento",
	"ACCEPTABLE":   "Aceptable",
	"WARNING":      "Alerta",
	"CRITICAL":     "Crítico",
	"NOT_ASSIGNED": "Sin asignar",
}

// StatusLabel returns the Spanish display label for an upstream status code.
// Unknown codes are returned unchanged.
func StatusLabel(code string) string {
	if label, ok := statusLabels[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return label
	}
	return code
}
