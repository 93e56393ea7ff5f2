// internal/workers/award/evaluate-compensation/report.go
package evaluatecompensation

import (
	"fmt"
	"strings"

	"github.com/cinematicsodium/awards/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	alertHeader = "Award amounts exceed the maximum allowed based on the selected award value and extent."
	alertFooter = "Please make the appropriate corrections and resubmit for processing.\n\nThank you."
)

// NewReport rebuilds the over-limit report from the nominees and the limit
// matrices.
func NewReport(category models.Category, v models.Value, e models.Extent, employees []models.Employee, policy string) *ComplianceReport {
	ml, hl, ok := Limits(v, e)
	if !ok {
		return nil
	}

	r := &ComplianceReport{
		Category:      category,
		Value:         v,
		Extent:        e,
		MonetaryLimit: ml,
		HoursLimit:    hl,
		Policy:        policy,
	}

	var m, h int
	for _, emp := range employees {
		r.Lines = append(r.Lines, NomineeLine{
			Name:          emp.Name,
			Monetary:      emp.MonetaryAmount,
			Hours:         emp.HoursAmount,
			MonetaryRatio: ratio(emp.MonetaryAmount, ml),
			HoursRatio:    ratio(emp.HoursAmount, hl),
		})
		m += emp.MonetaryAmount
		h += emp.HoursAmount
	}

	if category == models.CategoryGRP {
		r.Totals = &Totals{
			Monetary:      m,
			Hours:         h,
			MonetaryRatio: ratio(m, ml),
			HoursRatio:    ratio(h, hl),
		}
	}
	r.CombinedRatio = ratio(m, ml) + ratio(h, hl)
	return r
}

func ratio(amount, limit int) float64 {
	if limit == 0 {
		return 0
	}
	return float64(amount) / float64(limit)
}

// Render produces the alert text. Output depends only on the report.
func (r *ComplianceReport) Render() string {
	p := message.NewPrinter(language.English)
	value, extent := r.Value.Title(), r.Extent.Title()

	var b strings.Builder
	b.WriteString(alertHeader + "\n\n")

	b.WriteString("Award Details:\n")
	fmt.Fprintf(&b, "- Value:       %s\n", value)
	fmt.Fprintf(&b, "- Extent:      %s\n\n", extent)

	fmt.Fprintf(&b, "(%s x %s) Limits:\n", value, extent)
	fmt.Fprintf(&b, "- Monetary:    $%s\n", p.Sprintf("%.2f", float64(r.MonetaryLimit)))
	fmt.Fprintf(&b, "- Time-Off:    %s hours\n\n", p.Sprintf("%d", r.HoursLimit))

	b.WriteString("Nominee Details:\n")
	if r.Totals == nil && len(r.Lines) == 1 {
		line := r.Lines[0]
		fmt.Fprintf(&b, "- Name:        %s\n", line.Name)
		r.writeAmounts(p, &b, line.Monetary, line.Hours, line.MonetaryRatio, line.HoursRatio, "Total")
	} else {
		nameWidth, amountWidth := 0, 0
		for _, line := range r.Lines {
			nameWidth = max(nameWidth, len(line.Name))
			amountWidth = max(amountWidth, len(p.Sprintf("%d", line.Monetary)))
		}
		for _, line := range r.Lines {
			fmt.Fprintf(&b, "- Name: %-*s    Monetary: $%-*s    Time-Off: %d\n",
				nameWidth, line.Name, amountWidth, p.Sprintf("%d", line.Monetary), line.Hours)
		}
		if r.Totals != nil {
			b.WriteString("\nTotals:\n")
			t := r.Totals
			r.writeAmounts(p, &b, t.Monetary, t.Hours, t.MonetaryRatio, t.HoursRatio, "Sum")
		}
	}

	b.WriteString("\n" + r.Policy + "\n\n")
	b.WriteString(alertFooter)
	return b.String()
}

func (r *ComplianceReport) writeAmounts(p *message.Printer, b *strings.Builder, m, h int, mr, hr float64, sumLabel string) {
	fmt.Fprintf(b, "- Monetary:    $%-11s< %.2f%% of $%s limit\n",
		p.Sprintf("%.2f", float64(m)), mr*100, p.Sprintf("%.2f", float64(r.MonetaryLimit)))
	fmt.Fprintf(b, "- Time-Off:    %-12s< %.2f%% of %s-hour limit\n",
		p.Sprintf("%d hours", h), hr*100, p.Sprintf("%d", r.HoursLimit))
	fmt.Fprintf(b, "- %-12s %-12s< Max Allowed: 100%%\n",
		sumLabel+":", fmt.Sprintf("%.2f%%", r.CombinedRatio*100))
}
