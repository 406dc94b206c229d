// Package store persists reconstructed balance rows and exchange rates in
// SQLite.
//
// Balance rows are derived data, so the store's single write primitive is an
// atomic range replacement: callers never observe a mix of old and new rows
// for overlapping dates, and re-running an unchanged computation leaves the
// table byte-identical.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ewalden/reckon"
	"github.com/ewalden/reckon/date"
)

// Store wraps the SQLite connection holding balances and exchange rates.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens (creating if needed) the store at path. Use ":memory:" for an
// ephemeral store in tests.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dsn := ":memory:"
	if path != ":memory:" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve store path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		dsn = abs + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	// database/sql pooling plus SQLite write locking interact badly;
	// a single connection keeps transactions serialized.
	conn.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	s := &Store{db: conn, log: log.With().Str("component", "store").Logger()}
	if err := s.init(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize store schema: %w", err)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS balances (
	account_id           TEXT NOT NULL,
	date                 TEXT NOT NULL,
	currency             TEXT NOT NULL,
	start_cash           TEXT NOT NULL,
	start_non_cash       TEXT NOT NULL,
	start_balance        TEXT NOT NULL,
	cash_inflows         TEXT NOT NULL,
	cash_outflows        TEXT NOT NULL,
	non_cash_inflows     TEXT NOT NULL,
	non_cash_outflows    TEXT NOT NULL,
	cash_adjustments     TEXT NOT NULL,
	non_cash_adjustments TEXT NOT NULL,
	net_market_flows     TEXT NOT NULL,
	end_cash             TEXT NOT NULL,
	end_non_cash         TEXT NOT NULL,
	end_balance          TEXT NOT NULL,
	PRIMARY KEY (account_id, currency, date)
);

CREATE TABLE IF NOT EXISTS exchange_rates (
	date          TEXT NOT NULL,
	from_currency TEXT NOT NULL,
	to_currency   TEXT NOT NULL,
	rate          TEXT NOT NULL,
	PRIMARY KEY (date, from_currency, to_currency)
);
`

// ReplaceRange atomically swaps in a recomputed series for an account. For
// every currency present in the series, existing rows between the series'
// first and last day are deleted and the new rows inserted, in a single
// transaction: on failure the prior rows remain untouched.
func (s *Store) ReplaceRange(ctx context.Context, accountID uuid.UUID, series []reckon.Balance) error {
	if len(series) == 0 {
		return nil
	}

	// Per-currency affected window.
	type window struct{ from, to date.Date }
	windows := make(map[string]window)
	for _, b := range series {
		w, ok := windows[b.Currency]
		if !ok {
			windows[b.Currency] = window{from: b.Date, to: b.Date}
			continue
		}
		if b.Date.Before(w.from) {
			w.from = b.Date
		}
		if b.Date.After(w.to) {
			w.to = b.Date
		}
		windows[b.Currency] = w
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for currency, w := range windows {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM balances WHERE account_id = ? AND currency = ? AND date >= ? AND date <= ?`,
			accountID.String(), currency, w.from.String(), w.to.String(),
		); err != nil {
			return fmt.Errorf("failed to delete stale balances: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO balances (
			account_id, date, currency,
			start_cash, start_non_cash, start_balance,
			cash_inflows, cash_outflows, non_cash_inflows, non_cash_outflows,
			cash_adjustments, non_cash_adjustments, net_market_flows,
			end_cash, end_non_cash, end_balance
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare balance insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range series {
		if _, err := stmt.ExecContext(ctx,
			b.AccountID.String(), b.Date.String(), b.Currency,
			b.StartCash.String(), b.StartNonCash.String(), b.StartBalance().String(),
			b.CashInflows.String(), b.CashOutflows.String(),
			b.NonCashInflows.String(), b.NonCashOutflows.String(),
			b.CashAdjustments.String(), b.NonCashAdjustments.String(),
			b.NetMarketFlows.String(),
			b.EndCash.String(), b.EndNonCash.String(), b.EndBalance().String(),
		); err != nil {
			return fmt.Errorf("failed to insert balance %s %s: %w", b.Date, b.Currency, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit balance replacement: %w", err)
	}
	s.log.Debug().
		Str("account", accountID.String()).
		Int("rows", len(series)).
		Msg("replaced balance range")
	return nil
}

// Balances returns the stored series for an account within the range,
// ordered by currency then date.
func (s *Store) Balances(ctx context.Context, accountID uuid.UUID, r date.Range) ([]reckon.Balance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id, date, currency,
			start_cash, start_non_cash,
			cash_inflows, cash_outflows, non_cash_inflows, non_cash_outflows,
			cash_adjustments, non_cash_adjustments, net_market_flows,
			end_cash, end_non_cash
		FROM balances
		WHERE account_id = ? AND date >= ? AND date <= ?
		ORDER BY currency, date`,
		accountID.String(), r.From.String(), r.To.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query balances: %w", err)
	}
	defer rows.Close()

	var out []reckon.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balances: %w", err)
	}
	return out, nil
}

// Latest returns the most recent stored balance of each currency for an
// account, ordered by currency.
func (s *Store) Latest(ctx context.Context, accountID uuid.UUID) ([]reckon.Balance, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT account_id, date, currency,
			start_cash, start_non_cash,
			cash_inflows, cash_outflows, non_cash_inflows, non_cash_outflows,
			cash_adjustments, non_cash_adjustments, net_market_flows,
			end_cash, end_non_cash
		FROM balances
		WHERE account_id = ?
		AND date = (SELECT MAX(b2.date) FROM balances b2
			WHERE b2.account_id = balances.account_id
			AND b2.currency = balances.currency)
		ORDER BY currency`,
		accountID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query latest balances: %w", err)
	}
	defer rows.Close()

	var out []reckon.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating balances: %w", err)
	}
	return out, nil
}

func scanBalance(rows *sql.Rows) (reckon.Balance, error) {
	var b reckon.Balance
	var accountID, day string
	cols := []*decimal.Decimal{
		&b.StartCash, &b.StartNonCash,
		&b.CashInflows, &b.CashOutflows, &b.NonCashInflows, &b.NonCashOutflows,
		&b.CashAdjustments, &b.NonCashAdjustments, &b.NetMarketFlows,
		&b.EndCash, &b.EndNonCash,
	}
	raw := make([]string, len(cols))
	dest := []any{&accountID, &day, &b.Currency}
	for i := range raw {
		dest = append(dest, &raw[i])
	}
	if err := rows.Scan(dest...); err != nil {
		return reckon.Balance{}, fmt.Errorf("failed to scan balance: %w", err)
	}
	id, err := uuid.Parse(accountID)
	if err != nil {
		return reckon.Balance{}, fmt.Errorf("invalid account id %q: %w", accountID, err)
	}
	b.AccountID = id
	if b.Date, err = date.Parse(day); err != nil {
		return reckon.Balance{}, err
	}
	for i, col := range cols {
		d, err := decimal.NewFromString(raw[i])
		if err != nil {
			return reckon.Balance{}, fmt.Errorf("invalid decimal %q: %w", raw[i], err)
		}
		*col = d
	}
	return b, nil
}

// SaveRates records exchange rates. The table is append-only reference data:
// existing rates are never overwritten.
func (s *Store) SaveRates(ctx context.Context, rates ...reckon.ExchangeRate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, r := range rates {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO exchange_rates (date, from_currency, to_currency, rate) VALUES (?, ?, ?, ?)`,
			r.Date.String(), r.From, r.To, r.Rate.String(),
		); err != nil {
			return fmt.Errorf("failed to insert rate %s %s/%s: %w", r.Date, r.From, r.To, err)
		}
	}
	return tx.Commit()
}

// Rates loads the whole exchange rate table.
func (s *Store) Rates(ctx context.Context) (*reckon.Rates, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, from_currency, to_currency, rate FROM exchange_rates`)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchange rates: %w", err)
	}
	defer rows.Close()

	rates := reckon.NewRates()
	for rows.Next() {
		var day, from, to, raw string
		if err := rows.Scan(&day, &from, &to, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan exchange rate: %w", err)
		}
		on, err := date.Parse(day)
		if err != nil {
			return nil, err
		}
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid rate %q: %w", raw, err)
		}
		rates.Add(reckon.ExchangeRate{Date: on, From: from, To: to, Rate: rate})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exchange rates: %w", err)
	}
	return rates, nil
}
