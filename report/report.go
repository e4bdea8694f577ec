/*
Package report renders payroll output for people: whole-unit currency
strings and PDF documents for a closed cycle or a liquidación.

PURPOSE:
  The engine returns unrounded decimals. Rounding to whole currency units
  happens only here, at display time.

ENCODING:
  gofpdf core fonts are cp1252. Every string is transcoded with
  golang.org/x/text before it is drawn, so names like "Logística" and the
  "Renunció" status render correctly.

SEE ALSO:
  - payroll/types.go: PayrollWeek and FinalSummary
  - api/handlers.go: Serves the PDFs
*/
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/transform"

	"github.com/nomina/payroll-engine/payroll"
)

// =============================================================================
// CURRENCY
// =============================================================================

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatCurrency renders an amount as en-US dollars rounded to whole units,
// e.g. "$1,235" or "-$40".
func FormatCurrency(d decimal.Decimal) string {
	units := d.Round(0).IntPart()
	if units < 0 {
		return printer.Sprintf("-$%d", -units)
	}
	return printer.Sprintf("$%d", units)
}

func cp1252(s string) string {
	out, _, err := transform.String(charmap.Windows1252.NewEncoder(), s)
	if err != nil {
		return s
	}
	return out
}

// =============================================================================
// CYCLE REPORT
// =============================================================================

var weekColumns = []struct {
	title string
	width float64
}{
	{"Empleado", 52},
	{"Depto.", 32},
	{"Base", 22},
	{"Extras", 18},
	{"Bono", 18},
	{"Deducc.", 20},
	{"Total", 25},
}

// WritePayrollWeek renders a closed cycle as a one-table A4 document.
func WritePayrollWeek(w io.Writer, week payroll.PayrollWeek) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(cp1252("Nómina "+week.Label), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, cp1252("Nómina - "+week.Label))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 6, cp1252(fmt.Sprintf("Fecha: %s   Tipo: %s   Fórmula: %s",
		week.Date.Format("2006-01-02"), week.Type, week.FormulaVersion)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range weekColumns {
		pdf.CellFormat(c.width, 7, cp1252(c.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, s := range week.Summaries {
		deductions := decimal.Zero
		if s.LoanDeduction != nil {
			deductions = deductions.Add(*s.LoanDeduction)
		}
		if s.PenalizationDeduction != nil {
			deductions = deductions.Add(*s.PenalizationDeduction)
		}
		name := s.Name
		if s.Liquidation != nil {
			name += " (liq.)"
		}
		cells := []string{
			name,
			s.Department,
			FormatCurrency(s.BasePay),
			FormatCurrency(s.ExtraHoursPay),
			FormatCurrency(s.Bonus),
			FormatCurrency(deductions),
			FormatCurrency(s.Total),
		}
		for i, c := range weekColumns {
			align := "R"
			if i < 2 {
				align = "L"
			}
			pdf.CellFormat(c.width, 6, cp1252(cells[i]), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(162, 7, "Total a desembolsar", "1", 0, "R", true, 0, "")
	pdf.CellFormat(25, 7, FormatCurrency(week.TotalDisbursement), "1", 1, "R", true, 0, "")

	return pdf.Output(w)
}

// =============================================================================
// LIQUIDACIÓN REPORT
// =============================================================================

// WriteLiquidation renders one settlement with its day counts.
func WriteLiquidation(w io.Writer, emp payroll.Employee, status payroll.Status, d *payroll.LiquidationDetails, asOf time.Time) error {
	if d == nil {
		return fmt.Errorf("no liquidation for status %q", status)
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, cp1252("Liquidación - "+emp.FullName))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		fmt.Sprintf("Cargo: %s", emp.Position),
		fmt.Sprintf("Condición: %s", status),
		fmt.Sprintf("Ingreso: %s   Corte: %s", emp.HireDate.Format("2006-01-02"), asOf.Format("2006-01-02")),
		fmt.Sprintf("Antigüedad: %d años, %d meses, %d días", d.Seniority.Years, d.Seniority.Months, d.Seniority.Days),
		fmt.Sprintf("Salario semanal: %s   Salario integral diario: %s",
			FormatCurrency(emp.BaseWeeklySalary), d.IntegralDailySalary.StringFixed(2)),
	} {
		pdf.Cell(0, 7, cp1252(line))
		pdf.Ln(7)
	}
	pdf.Ln(4)

	rows := []struct {
		concept string
		days    string
		amount  decimal.Decimal
	}{
		{"Semanas adeudadas", "-", d.WeeksOwed},
		{"Prestaciones sociales", d.SeveranceDays.StringFixed(2), d.SeverancePay},
		{"Vacaciones y bono vacacional", d.VacationDays.Add(d.BonusDays).StringFixed(2), d.VacationPay},
		{"Utilidades", d.UtilityDays.StringFixed(2), d.UtilidadesPay},
		{"Indemnización (Art. 92)", d.IndemnityDays.StringFixed(2), d.IndemnityPay},
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(100, 7, "Concepto", "1", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, cp1252("Días"), "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 7, "Monto", "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range rows {
		pdf.CellFormat(100, 7, cp1252(r.concept), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, r.days, "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 7, FormatCurrency(r.amount), "1", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(130, 8, "Total", "1", 0, "R", true, 0, "")
	pdf.CellFormat(40, 8, FormatCurrency(d.Total), "1", 1, "R", true, 0, "")

	return pdf.Output(w)
}
