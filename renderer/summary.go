package renderer

import "github.com/ewalden/reckon"

// SummaryReport shows the latest reconstructed position of one account.
type SummaryReport struct {
	AccountName string
	Archetype   string
	Lines       []SummaryLine
}

// SummaryLine is the closing position in one currency.
type SummaryLine struct {
	Date     string
	Currency string
	Cash     string
	NonCash  string
	Total    string
}

// NewSummaryReport builds a summary from a balance series, keeping the last
// row of each currency. The series must be ordered by currency then date.
func NewSummaryReport(account reckon.Account, series []reckon.Balance) *SummaryReport {
	r := &SummaryReport{
		AccountName: account.Name,
		Archetype:   string(account.Archetype),
	}
	for i, b := range series {
		if i+1 < len(series) && series[i+1].Currency == b.Currency {
			continue
		}
		r.Lines = append(r.Lines, SummaryLine{
			Date:     b.Date.String(),
			Currency: b.Currency,
			Cash:     amount(b.EndCash),
			NonCash:  amount(b.EndNonCash),
			Total:    amount(b.EndBalance()),
		})
	}
	return r
}

// SummaryMarkdown renders the report as a markdown table.
func SummaryMarkdown(r *SummaryReport) string {
	return renderTemplate("summary", r)
}
