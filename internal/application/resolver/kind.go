package resolver

// Kind is the type of entity a foreign key points to
type Kind string

const (
	KindOrganization Kind = "organization"
	KindUser         Kind = "user"
	KindZone         Kind = "zone"
	KindStreet       Kind = "street"
	KindRoute        Kind = "route"
	KindSchedule     Kind = "schedule"
	KindWaterBox     Kind = "water-box"
	KindTestingPoint Kind = "testing-point"
)

// Fallback is the name shown for an id missing from the fetched collection.
// Kinds without a placeholder show the raw id. An empty id shows nothing.
func (k Kind) Fallback(id string) string {
	if id == "" {
		return ""
	}
	switch k {
	case KindOrganization:
		return "Organización desconocida"
	case KindUser:
		return "Usuario desconocido"
	case KindZone:
		return "Zona desconocida"
	case KindStreet:
		return "Calle desconocida"
	default:
		return id
	}
}

// plural is used in warnings shown to the user
func (k Kind) plural() string {
	switch k {
	case KindOrganization:
		return "organizaciones"
	case KindUser:
		return "usuarios"
	case KindZone:
		return "zonas"
	case KindStreet:
		return "calles"
	case KindRoute:
		return "rutas"
	case KindSchedule:
		return "horarios"
	case KindWaterBox:
		return "cajas de agua"
	case KindTestingPoint:
		return "puntos de muestreo"
	default:
		return string(k)
	}
}
