package reckon

import (
	"testing"

	"github.com/google/uuid"
)

func TestResolveCashFromSnapshot(t *testing.T) {
	var collector AnomalyCollector
	resolver := CashResolver{Reporter: &collector}

	got := resolver.Resolve(uuid.New(), RawSnapshot{
		CurrentBalance: dec(1000),
		Currency:       "USD",
		Holdings: []Holding{
			{SecurityID: "CUR:USD", Quantity: dec(200), Price: dec(1)}, // cash proxy
			{SecurityID: "ACME", Quantity: dec(10), Price: dec(30)},    // true holding
		},
	})
	if got.TotalValue.Decimal().String() != "1000" {
		t.Errorf("total = %s, want the provider's 1000", got.TotalValue.Decimal())
	}
	if got.CashBalance.Decimal().String() != "700" {
		t.Errorf("cash = %s, want 700", got.CashBalance.Decimal())
	}
	if len(collector.All()) != 0 {
		t.Errorf("unexpected anomalies: %+v", collector.All())
	}
}

func TestResolveUnknownHolding(t *testing.T) {
	var collector AnomalyCollector
	resolver := CashResolver{Reporter: &collector}

	got := resolver.Resolve(uuid.New(), RawSnapshot{
		CurrentBalance: dec(500),
		Currency:       "USD",
		Holdings: []Holding{
			{SecurityID: "", Quantity: dec(2), Price: dec(100)},
		},
	})
	// The unresolvable holding counts as a true holding.
	if got.CashBalance.Decimal().String() != "300" {
		t.Errorf("cash = %s, want 300", got.CashBalance.Decimal())
	}
	anomalies := collector.All()
	if len(anomalies) != 1 || anomalies[0].Kind != AnomalyUnknownHolding {
		t.Fatalf("anomalies = %+v, want one unknown-holding anomaly", anomalies)
	}
}

func TestResolveNegativeCash(t *testing.T) {
	var collector AnomalyCollector
	resolver := CashResolver{Reporter: &collector}

	got := resolver.Resolve(uuid.New(), RawSnapshot{
		CurrentBalance: dec(100),
		Currency:       "USD",
		Holdings:       []Holding{{SecurityID: "ACME", Quantity: dec(2), Price: dec(80)}},
	})
	// Negative cash is reported but the decomposition still holds: total
	// stays ground truth.
	if got.CashBalance.Decimal().String() != "-60" {
		t.Errorf("cash = %s, want -60", got.CashBalance.Decimal())
	}
	anomalies := collector.All()
	if len(anomalies) != 1 || anomalies[0].Kind != AnomalyNegativeCash {
		t.Fatalf("anomalies = %+v, want one negative-cash anomaly", anomalies)
	}
}

func TestResolveNegativeTotal(t *testing.T) {
	var collector AnomalyCollector
	resolver := CashResolver{Reporter: &collector}

	resolver.Resolve(uuid.New(), RawSnapshot{
		CurrentBalance: dec(-50),
		Currency:       "USD",
	})
	anomalies := collector.All()
	if len(anomalies) != 2 {
		t.Fatalf("anomalies = %+v, want negative-value and negative-cash", anomalies)
	}
	if anomalies[0].Kind != AnomalyNegativeValue || anomalies[1].Kind != AnomalyNegativeCash {
		t.Errorf("anomaly kinds = %s, %s", anomalies[0].Kind, anomalies[1].Kind)
	}
}

func TestResolveCustomProxy(t *testing.T) {
	resolver := CashResolver{IsCashProxy: func(id string) bool { return id == "SWEEP" }}
	got := resolver.Resolve(uuid.New(), RawSnapshot{
		CurrentBalance: dec(1000),
		Currency:       "USD",
		Holdings: []Holding{
			{SecurityID: "SWEEP", Quantity: dec(1), Price: dec(400)},
			{SecurityID: "CUR:USD", Quantity: dec(1), Price: dec(100)}, // a real holding under this resolver
		},
	})
	if got.CashBalance.Decimal().String() != "900" {
		t.Errorf("cash = %s, want 900", got.CashBalance.Decimal())
	}
}
