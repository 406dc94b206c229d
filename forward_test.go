package reckon

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ewalden/reckon/date"
)

// testAsOf is a fixed as-of day; test entries are placed relative to it.
var testAsOf = date.New(2026, time.March, 10)

func day(offset int) date.Date { return testAsOf.Add(offset) }

func testAccount(t *testing.T, archetype Archetype) Account {
	t.Helper()
	a, err := NewAccount("test account", "USD", archetype)
	if err != nil {
		t.Fatalf("NewAccount: %v", err)
	}
	return a
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// endBalances projects the series to its per-day end totals.
func endBalances(series []Balance) []string {
	out := make([]string, len(series))
	for i, b := range series {
		out[i] = b.EndBalance().String()
	}
	return out
}

func assertEndBalances(t *testing.T, series []Balance, want []string) {
	t.Helper()
	got := endBalances(series)
	if len(got) != len(want) {
		t.Fatalf("got %d days %v, want %d days %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("day %d: end balance = %s, want %s (full series %v)", i, got[i], want[i], got)
		}
	}
}

func checkSeries(t *testing.T, series []Balance) {
	t.Helper()
	if err := CheckSeries(series); err != nil {
		t.Fatalf("series fails its invariants: %v", err)
	}
}

func TestForwardZeroEntries(t *testing.T) {
	account := testAccount(t, Depository)
	series, err := ForwardCalculator{}.Calculate(ForwardInput{
		Account: account,
		Start:   day(-1),
		AsOf:    testAsOf,
	})
	if err != nil {
		t.Fatal(err)
	}
	assertEndBalances(t, series, []string{"0", "0"})
	checkSeries(t, series)
}

func TestForwardValuationOnly(t *testing.T) {
	account := testAccount(t, Depository)
	entries := []Entry{
		NewValuation(account.ID, day(-4), M(17000, "USD")),
		NewValuation(account.ID, day(-2), M(19000, "USD")),
	}
	series, err := ForwardCalculator{}.Calculate(ForwardInput{
		Account: account,
		Entries: entries,
		Start:   day(-5),
		AsOf:    testAsOf,
	})
	if err != nil {
		t.Fatal(err)
	}
	assertEndBalances(t, series, []string{"0", "17000", "17000", "19000", "19000", "19000"})
	checkSeries(t, series)

	// The valuation discrepancy is booked as an adjustment, in the cash
	// bucket for a depository account.
	if got := series[1].CashAdjustments.String(); got != "17000" {
		t.Errorf("day -4 cash adjustment = %s, want 17000", got)
	}
	if got := series[3].CashAdjustments.String(); got != "2000" {
		t.Errorf("day -2 cash adjustment = %s, want 2000", got)
	}
}

func TestForwardTransactionOnly(t *testing.T) {
	account := testAccount(t, Depository)
	entries := []Entry{
		NewTransaction(account.ID, day(-4), M(-500, "USD")), // income
		NewTransaction(account.ID, day(-2), M(100, "USD")),  // expense
	}
	series, err := ForwardCalculator{}.Calculate(ForwardInput{
		Account: account,
		Entries: entries,
		Start:   day(-5),
		AsOf:    testAsOf,
	})
	if err != nil {
		t.Fatal(err)
	}
	assertEndBalances(t, series, []string{"0", "500", "500", "400", "400", "400"})
	checkSeries(t, series)

	if got := series[1].CashInflows.String(); got != "500" {
		t.Errorf("income day cash inflows = %s, want 500", got)
	}
	if got := series[3].CashOutflows.String(); got != "100" {
		t.Errorf("expense day cash outflows = %s, want 100", got)
	}
}

func TestForwardMultiCurrency(t *testing.T) {
	account := testAccount(t, Depository)
	rates := NewRates()
	rates.Add(ExchangeRate{Date: day(-1), From: "EUR", To: "USD", Rate: dec(1.2)})

	entries := []Entry{
		NewTransaction(account.ID, day(-3), M(-100, "USD")),
		NewTransaction(account.ID, day(-2), M(-300, "USD")),
		NewTransaction(account.ID, day(-1), M(-500, "EUR")),
	}
	series, err := ForwardCalculator{Converter: Converter{Table: rates}}.Calculate(ForwardInput{
		Account: account,
		Entries: entries,
		Start:   day(-4),
		AsOf:    testAsOf,
	})
	if err != nil {
		t.Fatal(err)
	}
	assertEndBalances(t, series, []string{"0", "100", "400", "1000", "1000"})
	checkSeries(t, series)

	// Everything is reported in the account currency.
	for _, b := range series {
		if b.Currency != "USD" {
			t.Fatalf("row %s has currency %s, want USD", b.Date, b.Currency)
		}
	}
}

func TestForwardMissingRateFallsBack(t *testing.T) {
	account := testAccount(t, Depository)
	var collector AnomalyCollector
	conv := Converter{Table: NewRates(), Reporter: &collector}

	entries := []Entry{NewTransaction(account.ID, day(-1), M(-500, "EUR"))}
	series, err := ForwardCalculator{Converter: conv}.Calculate(ForwardInput{
		Account: account,
		Entries: entries,
		AsOf:    testAsOf,
	})
	if err != nil {
		t.Fatal(err)
	}
	// Converted at the fallback rate of 1.
	assertEndBalances(t, series, []string{"500", "500"})

	anomalies := collector.All()
	if len(anomalies) != 1 || anomalies[0].Kind != AnomalyMissingRate {
		t.Fatalf("anomalies = %+v, want one missing-rate anomaly", anomalies)
	}
}

func TestForwardTrades(t *testing.T) {
	account := testAccount(t, Investment)
	entries := []Entry{
		NewTransaction(account.ID, day(-3), M(-1000, "USD")),           // fund the account
		NewTrade(account.ID, day(-2), "ACME", dec(10), dec(40), "USD"), // buy
	}
	series, err := ForwardCalculator{}.Calculate(ForwardInput{
		Account: account,
		Entries: entries,
		AsOf:    testAsOf,
	})
	if err != nil {
		t.Fatal(err)
	}
	checkSeries(t, series)

	buy := series[1]
	// A buy moves value out of the total: the trade is a non-cash outflow.
	if got := buy.NonCashOutflows.String(); got != "400" {
		t.Errorf("buy day non-cash outflows = %s, want 400", got)
	}
	if got := buy.EndBalance().String(); got != "600" {
		t.Errorf("buy day end balance = %s, want 600", got)
	}
}

func TestForwardMarketFlows(t *testing.T) {
	account := testAccount(t, Investment)
	entries := []Entry{NewValuation(account.ID, day(-3), M(1000, "USD"))}
	values := ValueSeries{
		day(-2): dec(1000),
		day(-1): dec(1050),
	}
	series, err := ForwardCalculator{}.Calculate(ForwardInput{
		Account: account,
		Entries: entries,
		AsOf:    testAsOf,
		Values:  values,
	})
	if err != nil {
		t.Fatal(err)
	}
	checkSeries(t, series)

	// Market flow needs both the day and the day before in the value series.
	if got := series[1].NetMarketFlows.String(); got != "0" {
		t.Errorf("day -2 market flow = %s, want 0", got)
	}
	if got := series[2].NetMarketFlows.String(); got != "50" {
		t.Errorf("day -1 market flow = %s, want 50", got)
	}
	if got := series[2].EndBalance().String(); got != "1050" {
		t.Errorf("day -1 end balance = %s, want 1050", got)
	}
}

func TestForwardExcludedEntriesIgnored(t *testing.T) {
	account := testAccount(t, Depository)
	excluded := NewTransaction(account.ID, day(-1), M(-500, "USD"))
	excluded.Excluded = true
	series, err := ForwardCalculator{}.Calculate(ForwardInput{
		Account: account,
		Entries: []Entry{excluded, NewTransaction(account.ID, day(0), M(-100, "USD"))},
		AsOf:    testAsOf,
	})
	if err != nil {
		t.Fatal(err)
	}
	// The excluded entry neither contributes flows nor extends the window.
	assertEndBalances(t, series, []string{"100"})
}

func TestForwardLiabilitySigns(t *testing.T) {
	account := testAccount(t, CreditCard)
	entries := []Entry{
		NewTransaction(account.ID, day(-2), M(250, "USD")),  // a purchase increases the debt
		NewTransaction(account.ID, day(-1), M(-200, "USD")), // a payment decreases it
	}
	series, err := ForwardCalculator{}.Calculate(ForwardInput{
		Account: account,
		Entries: entries,
		AsOf:    testAsOf,
	})
	if err != nil {
		t.Fatal(err)
	}
	assertEndBalances(t, series, []string{"250", "50", "50"})
	checkSeries(t, series)
}

func TestForwardRejectsForeignEntries(t *testing.T) {
	account := testAccount(t, Depository)
	foreign := NewTransaction(uuid.New(), day(-1), M(10, "USD"))
	if _, err := (ForwardCalculator{}).Calculate(ForwardInput{
		Account: account,
		Entries: []Entry{foreign},
		AsOf:    testAsOf,
	}); err == nil {
		t.Fatal("expected an error for an entry of another account")
	}
}

func TestForwardAsOfBeforeStart(t *testing.T) {
	account := testAccount(t, Depository)
	if _, err := (ForwardCalculator{}).Calculate(ForwardInput{
		Account: account,
		Start:   day(0),
		AsOf:    day(-1),
	}); err == nil {
		t.Fatal("expected an error when as-of precedes the start")
	}
}

func TestForwardIdempotence(t *testing.T) {
	account := testAccount(t, Depository)
	entries := []Entry{
		NewTransaction(account.ID, day(-4), M(-500, "USD")),
		NewValuation(account.ID, day(-2), M(450, "USD")),
		NewTransaction(account.ID, day(-1), M(30, "USD")),
	}
	calc := ForwardCalculator{}
	in := ForwardInput{Account: account, Entries: entries, AsOf: testAsOf}

	first, err := calc.Calculate(in)
	if err != nil {
		t.Fatal(err)
	}
	second, err := calc.Calculate(in)
	if err != nil {
		t.Fatal(err)
	}
	assertSameSeries(t, second, first)
}
