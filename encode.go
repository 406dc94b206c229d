package reckon

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ewalden/reckon/date"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// recordAccount tags the ledger file's header line.
const recordAccount = "account"

// accountRecord is a specialized struct for decoding the header line.
type accountRecord struct {
	Record    string    `json:"record"`
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	Archetype string    `json:"archetype"`
}

// entryRecord is a specialized struct with all possible entry fields, used
// for decoding any entry line.
type entryRecord struct {
	Record   string          `json:"record"`
	ID       string          `json:"id"`
	Date     date.Date       `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Excluded bool            `json:"excluded"`
	Security string          `json:"security"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// DecodeLedger decodes a ledger from a stream of JSONL data: an account
// header line followed by one entry per line. Entries lacking an id are
// assigned a fresh one.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	scanner := bufio.NewScanner(r)
	var ledger *Ledger
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}

		var identifier struct {
			Record string `json:"record"`
		}
		if err := json.Unmarshal(lineBytes, &identifier); err != nil {
			return nil, fmt.Errorf("could not identify record in line %d: %w", line, err)
		}

		if identifier.Record == recordAccount {
			if ledger != nil {
				return nil, fmt.Errorf("line %d: duplicate account record", line)
			}
			var rec accountRecord
			if err := json.Unmarshal(lineBytes, &rec); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			archetype, err := ParseArchetype(rec.Archetype)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			if err := ValidateCurrency(rec.Currency); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			id := rec.ID
			if id == uuid.Nil {
				id = uuid.New()
			}
			ledger = NewLedger(Account{ID: id, Name: rec.Name, Currency: rec.Currency, Archetype: archetype})
			continue
		}

		if ledger == nil {
			return nil, fmt.Errorf("line %d: entry before account record", line)
		}
		entry, err := decodeEntry(lineBytes)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ledger.Append(entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger has no account record")
	}
	return ledger, nil
}

func decodeEntry(lineBytes []byte) (Entry, error) {
	var rec entryRecord
	if err := json.Unmarshal(lineBytes, &rec); err != nil {
		return Entry{}, err
	}
	kind := Kind(rec.Record)
	switch kind {
	case Transaction, Trade, Valuation:
	default:
		return Entry{}, fmt.Errorf("unknown record kind %q", rec.Record)
	}
	id := uuid.New()
	if rec.ID != "" {
		parsed, err := uuid.Parse(rec.ID)
		if err != nil {
			return Entry{}, fmt.Errorf("invalid entry id %q: %w", rec.ID, err)
		}
		id = parsed
	}
	e := Entry{
		ID:       id,
		Kind:     kind,
		Date:     rec.Date,
		Amount:   M(rec.Amount, rec.Currency),
		Excluded: rec.Excluded,
	}
	if kind == Trade {
		e.Security = rec.Security
		e.Quantity = rec.Quantity
		e.Price = rec.Price
		// The amount of a trade is always quantity times price.
		e.Amount = M(rec.Quantity.Mul(rec.Price), rec.Currency)
	}
	return e, nil
}

// EncodeLedger writes the ledger in its canonical JSONL form: the account
// header first, then entries in chronological order with stable key order.
// Encoding then decoding yields an identical ledger.
func EncodeLedger(w io.Writer, l *Ledger) error {
	var hw jsonObjectWriter
	hw.Append("record", recordAccount)
	hw.Append("id", l.account.ID)
	hw.Optional("name", l.account.Name)
	hw.Append("currency", l.account.Currency)
	hw.Append("archetype", string(l.account.Archetype))
	if err := writeLine(w, &hw); err != nil {
		return err
	}
	for _, e := range l.entries {
		if err := EncodeEntry(w, e); err != nil {
			return err
		}
	}
	return nil
}

// EncodeEntry appends a single entry line in canonical form.
func EncodeEntry(w io.Writer, e Entry) error {
	var ew jsonObjectWriter
	ew.Append("record", string(e.Kind))
	ew.Append("id", e.ID)
	ew.Append("date", e.Date)
	if e.Kind == Trade {
		ew.Append("security", e.Security)
		ew.Append("quantity", e.Quantity)
		ew.Append("price", e.Price)
	} else {
		ew.Append("amount", e.Amount.Decimal())
	}
	ew.Append("currency", e.Amount.Currency())
	ew.Optional("excluded", e.Excluded)
	return writeLine(w, &ew)
}

func writeLine(w io.Writer, ow *jsonObjectWriter) error {
	b, err := ow.MarshalJSON()
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}
