package renderer

import (
	"github.com/shopspring/decimal"

	"github.com/ewalden/reckon"
)

// HistoryReport is the per-day balance history of one account, ready for
// rendering. When the account transacted in several currencies the report
// holds one section per currency.
type HistoryReport struct {
	AccountName string
	Archetype   string
	Sections    []HistorySection
}

// HistorySection is the history of a single currency.
type HistorySection struct {
	Currency string
	Rows     []HistoryRow
}

// HistoryRow is one rendered day. Amounts are pre-formatted strings so the
// template stays free of formatting logic.
type HistoryRow struct {
	Date        string
	Start       string
	Inflows     string
	Outflows    string
	Adjustments string
	Market      string
	End         string
}

// NewHistoryReport builds a history report from a balance series. The series
// must be ordered by currency then date, as the store returns it.
func NewHistoryReport(account reckon.Account, series []reckon.Balance) *HistoryReport {
	r := &HistoryReport{
		AccountName: account.Name,
		Archetype:   string(account.Archetype),
	}
	var section *HistorySection
	for _, b := range series {
		if section == nil || section.Currency != b.Currency {
			r.Sections = append(r.Sections, HistorySection{Currency: b.Currency})
			section = &r.Sections[len(r.Sections)-1]
		}
		section.Rows = append(section.Rows, HistoryRow{
			Date:        b.Date.String(),
			Start:       amount(b.StartBalance()),
			Inflows:     amount(b.CashInflows.Add(b.NonCashInflows)),
			Outflows:    amount(b.CashOutflows.Add(b.NonCashOutflows)),
			Adjustments: amount(b.CashAdjustments.Add(b.NonCashAdjustments)),
			Market:      amount(b.NetMarketFlows),
			End:         amount(b.EndBalance()),
		})
	}
	return r
}

// HistoryMarkdown renders the report as a markdown document with one table
// per currency.
func HistoryMarkdown(r *HistoryReport) string {
	return renderTemplate("history", r)
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
