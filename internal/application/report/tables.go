package report

import (
	"strconv"
	"strings"

	appclient "github.com/jass/bff/internal/application/client"
	appdistribution "github.com/jass/bff/internal/application/distribution"
	apporganization "github.com/jass/bff/internal/application/organization"
	apppayment "github.com/jass/bff/internal/application/payment"
	appquality "github.com/jass/bff/internal/application/quality"
	appwaterbox "github.com/jass/bff/internal/application/waterbox"
	"github.com/jass/bff/internal/domain/report"
	"github.com/jass/bff/internal/domain/shared"
	"github.com/shopspring/decimal"
)

func col(header, width string, align report.Align) report.Column {
	return report.Column{Header: header, Width: width, Align: align}
}

func formatDate(value string) string {
	t := shared.ParseTime(value)
	if t.IsZero() {
		return value
	}
	return t.Format("02/01/2006")
}

func formatMoney(d decimal.Decimal) string {
	return "S/ " + d.StringFixed(2)
}

func countItem(label string, n int) report.SummaryItem {
	return report.SummaryItem{Label: label, Value: strconv.Itoa(n)}
}

// countBy counts rows per status label, keeping first-seen order
func countBy[T any](items []T, label func(T) string) []report.SummaryItem {
	counts := map[string]int{}
	var order []string
	for _, item := range items {
		l := label(item)
		if l == "" {
			continue
		}
		if _, ok := counts[l]; !ok {
			order = append(order, l)
		}
		counts[l]++
	}
	out := make([]report.SummaryItem, 0, len(order))
	for _, l := range order {
		out = append(out, countItem(l, counts[l]))
	}
	return out
}

func clientsTable(items []appclient.ClientView) ([]report.Column, [][]report.Cell, []report.SummaryItem) {
	cols := []report.Column{
		col("Código", "10%", report.AlignLeft),
		col("Nombre completo", "22%", report.AlignLeft),
		col("Documento", "12%", report.AlignLeft),
		col("Teléfono", "10%", report.AlignLeft),
		col("Zona", "14%", report.AlignLeft),
		col("Calle", "16%", report.AlignLeft),
		col("Estado", "12%", report.AlignCenter),
	}
	rows := make([][]report.Cell, len(items))
	for i, c := range items {
		doc := strings.TrimSpace(c.DocumentType + " " + c.DocumentNumber)
		rows[i] = []report.Cell{
			report.Text(c.UserCode), report.Text(c.FullName), report.Text(doc), report.Text(c.Phone),
			report.Text(c.ZoneName), report.Text(c.StreetName), report.Status(c.Status),
		}
	}
	summary := append([]report.SummaryItem{countItem("Total de clientes", len(items))},
		countBy(items, func(c appclient.ClientView) string { return c.StatusLabel })...)
	return cols, rows, summary
}

func paymentsTable(items []apppayment.PaymentView) ([]report.Column, [][]report.Cell, []report.SummaryItem) {
	cols := []report.Column{
		col("Código", "10%", report.AlignLeft),
		col("Fecha", "10%", report.AlignCenter),
		col("Usuario", "22%", report.AlignLeft),
		col("Caja", "10%", report.AlignLeft),
		col("Tipo", "12%", report.AlignLeft),
		col("Método", "10%", report.AlignLeft),
		col("Monto", "12%", report.AlignRight),
		col("Estado", "10%", report.AlignCenter),
	}
	rows := make([][]report.Cell, len(items))
	total, paid := decimal.Zero, decimal.Zero
	for i, p := range items {
		rows[i] = []report.Cell{
			report.Text(p.PaymentCode), report.Text(formatDate(p.PaymentDate)), report.Text(p.UserName),
			report.Text(p.WaterBoxCode), report.Text(p.PaymentType), report.Text(p.PaymentMethod),
			report.Text(formatMoney(p.TotalAmount)), report.Status(p.PaymentStatus),
		}
		total = total.Add(p.TotalAmount)
		if p.PaymentStatus == "PAID" {
			paid = paid.Add(p.TotalAmount)
		}
	}
	summary := []report.SummaryItem{
		countItem("Total de pagos", len(items)),
		{Label: "Monto total", Value: formatMoney(total)},
		{Label: "Monto pagado", Value: formatMoney(paid)},
	}
	return cols, rows, summary
}

func faresTable(items []apppayment.FareView) ([]report.Column, [][]report.Cell, []report.SummaryItem) {
	cols := []report.Column{
		col("Código", "14%", report.AlignLeft),
		col("Nombre", "32%", report.AlignLeft),
		col("Tipo", "18%", report.AlignLeft),
		col("Monto", "16%", report.AlignRight),
		col("Estado", "16%", report.AlignCenter),
	}
	rows := make([][]report.Cell, len(items))
	for i, f := range items {
		rows[i] = []report.Cell{
			report.Text(f.FareCode), report.Text(f.FareName), report.Text(f.FareType),
			report.Text(formatMoney(f.FareAmount)), report.Status(f.Status),
		}
	}
	return cols, rows, []report.SummaryItem{countItem("Total de tarifas", len(items))}
}

func routesTable(items []appdistribution.RouteView) ([]report.Column, [][]report.Cell, []report.SummaryItem) {
	cols := []report.Column{
		col("Código", "10%", report.AlignLeft),
		col("Nombre", "20%", report.AlignLeft),
		col("Zonas", "34%", report.AlignLeft),
		col("Duración (h)", "10%", report.AlignRight),
		col("Responsable", "14%", report.AlignLeft),
		col("Estado", "8%", report.AlignCenter),
	}
	rows := make([][]report.Cell, len(items))
	for i, r := range items {
		rows[i] = []report.Cell{
			report.Text(r.RouteCode), report.Text(r.RouteName), report.Text(strings.Join(r.ZoneNames, " → ")),
			report.Text(strconv.FormatFloat(r.TotalEstimatedDuration, 'f', 1, 64)),
			report.Text(r.ResponsibleName), report.Status(r.Status),
		}
	}
	return cols, rows, []report.SummaryItem{countItem("Total de rutas", len(items))}
}

func schedulesTable(items []appdistribution.ScheduleView) ([]report.Column, [][]report.Cell, []report.SummaryItem) {
	cols := []report.Column{
		col("Código", "10%", report.AlignLeft),
		col("Nombre", "18%", report.AlignLeft),
		col("Zona", "16%", report.AlignLeft),
		col("Calle", "16%", report.AlignLeft),
		col("Días", "14%", report.AlignLeft),
		col("Horario", "12%", report.AlignCenter),
		col("Estado", "10%", report.AlignCenter),
	}
	rows := make([][]report.Cell, len(items))
	for i, s := range items {
		rows[i] = []report.Cell{
			report.Text(s.ScheduleCode), report.Text(s.ScheduleName), report.Text(s.ZoneName), report.Text(s.StreetName),
			report.Text(strings.Join(s.DaysOfWeek, ", ")), report.Text(s.StartTime + " - " + s.EndTime), report.Status(s.Status),
		}
	}
	return cols, rows, []report.SummaryItem{countItem("Total de horarios", len(items))}
}

func programsTable(items []appdistribution.ProgramView) ([]report.Column, [][]report.Cell, []report.SummaryItem) {
	cols := []report.Column{
		col("Código", "9%", report.AlignLeft),
		col("Fecha", "9%", report.AlignCenter),
		col("Ruta", "14%", report.AlignLeft),
		col("Horario", "12%", report.AlignLeft),
		col("Zona", "11%", report.AlignLeft),
		col("Calle", "11%", report.AlignLeft),
		col("Planificado", "10%", report.AlignCenter),
		col("Responsable", "12%", report.AlignLeft),
		col("Estado", "8%", report.AlignCenter),
	}
	rows := make([][]report.Cell, len(items))
	for i, p := range items {
		rows[i] = []report.Cell{
			report.Text(p.ProgramCode), report.Text(formatDate(p.ProgramDate)), report.Text(p.RouteName),
			report.Text(p.ScheduleName), report.Text(p.ZoneName), report.Text(p.StreetName),
			report.Text(p.PlannedStartTime + " - " + p.PlannedEndTime), report.Text(p.ResponsibleName), report.Status(p.Status),
		}
	}
	summary := append([]report.SummaryItem{countItem("Total de programas", len(items))},
		countBy(items, func(p appdistribution.ProgramView) string { return p.StatusLabel })...)
	return cols, rows, summary
}

func waterBoxesTable(items []appwaterbox.WaterBoxView) ([]report.Column, [][]report.Cell, []report.SummaryItem) {
	cols := []report.Column{
		col("Código", "12%", report.AlignLeft),
		col("Tipo", "12%", report.AlignLeft),
		col("Instalación", "12%", report.AlignCenter),
		col("Usuario asignado", "28%", report.AlignLeft),
		col("Desde", "12%", report.AlignCenter),
		col("Cuota mensual", "12%", report.AlignRight),
		col("Estado", "8%", report.AlignCenter),
	}
	rows := make([][]report.Cell, len(items))
	assigned := 0
	for i, w := range items {
		fee := ""
		if w.MonthlyFee != nil {
			fee = formatMoney(*w.MonthlyFee)
			assigned++
		}
		rows[i] = []report.Cell{
			report.Text(w.BoxCode), report.Text(w.BoxType), report.Text(formatDate(w.InstallationDate)),
			report.Text(w.AssignedUserName), report.Text(formatDate(w.AssignmentStart)), report.Text(fee), report.Status(w.Status),
		}
	}
	summary := []report.SummaryItem{
		countItem("Total de cajas", len(items)),
		countItem("Asignadas", assigned),
		countItem("Sin asignar", len(items)-assigned),
	}
	return cols, rows, summary
}

func qualityTestsTable(items []appquality.TestView) ([]report.Column, [][]report.Cell, []report.SummaryItem) {
	cols := []report.Column{
		col("Código", "10%", report.AlignLeft),
		col("Fecha", "10%", report.AlignCenter),
		col("Punto de muestreo", "20%", report.AlignLeft),
		col("Tipo", "12%", report.AlignLeft),
		col("Analista", "18%", report.AlignLeft),
		col("Parámetros", "18%", report.AlignLeft),
		col("Resultado", "8%", report.AlignCenter),
	}
	rows := make([][]report.Cell, len(items))
	for i, t := range items {
		params := make([]string, len(t.Results))
		for j, r := range t.Results {
			params[j] = strings.TrimSpace(r.ParameterCode + " " + r.MeasuredValue.String() + " " + r.Unit)
		}
		rows[i] = []report.Cell{
			report.Text(t.TestCode), report.Text(formatDate(t.TestDate)), report.Text(t.TestingPointName),
			report.Text(t.TestType), report.Text(t.TestedByName), report.Text(strings.Join(params, "; ")),
			report.Status(t.ResultStatus),
		}
	}
	summary := append([]report.SummaryItem{countItem("Total de análisis", len(items))},
		countBy(items, func(t appquality.TestView) string { return t.StatusLabel })...)
	return cols, rows, summary
}

func chlorineTable(items []appquality.ChlorineView) ([]report.Column, [][]report.Cell, []report.SummaryItem) {
	cols := []report.Column{
		col("Código", "12%", report.AlignLeft),
		col("Fecha", "12%", report.AlignCenter),
		col("Punto de muestreo", "24%", report.AlignLeft),
		col("Nivel (mg/L)", "12%", report.AlignRight),
		col("Registrado por", "22%", report.AlignLeft),
		col("Estado", "14%", report.AlignCenter),
	}
	rows := make([][]report.Cell, len(items))
	for i, c := range items {
		rows[i] = []report.Cell{
			report.Text(c.RecordCode), report.Text(formatDate(c.RecordDate)), report.Text(c.TestingPointName),
			report.Text(c.Level.StringFixed(2)), report.Text(c.RecordedByName), report.Status(c.StatusCode),
		}
	}
	summary := append([]report.SummaryItem{countItem("Total de registros", len(items))},
		countBy(items, func(c appquality.ChlorineView) string { return c.StatusLabel })...)
	return cols, rows, summary
}

func organizationsTable(items []apporganization.OrganizationView) ([]report.Column, [][]report.Cell, []report.SummaryItem) {
	cols := []report.Column{
		col("Código", "12%", report.AlignLeft),
		col("Nombre", "26%", report.AlignLeft),
		col("Representante legal", "22%", report.AlignLeft),
		col("Dirección", "18%", report.AlignLeft),
		col("Teléfono", "10%", report.AlignLeft),
		col("Estado", "8%", report.AlignCenter),
	}
	rows := make([][]report.Cell, len(items))
	for i, o := range items {
		rows[i] = []report.Cell{
			report.Text(o.OrganizationCode), report.Text(o.DisplayName), report.Text(o.LegalRepresentative),
			report.Text(o.Address), report.Text(o.Phone), report.Status(o.Status),
		}
	}
	return cols, rows, []report.SummaryItem{countItem("Total de organizaciones", len(items))}
}
