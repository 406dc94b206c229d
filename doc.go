// Package reckon reconstructs complete, gap-free daily balance histories
// from sparse, multi-currency streams of dated financial events: manual
// valuations, transactions, and security trades.
//
// The core functionalities include:
//   - Forward replay: rebuilding a series from an assumed zero baseline,
//     for manual accounts and full historical backfills.
//   - Backward reconciliation: walking a known authoritative current
//     balance back through time, for connected accounts.
//   - Flow classification: archetype-aware sign and bucket rules that
//     decompose each day into cash and non-cash inflows, outflows,
//     adjustments, and market-driven value changes.
//   - Currency conversion: exact-date exchange rate lookups with a soft
//     fallback, so a missing rate never aborts a reconstruction.
//   - Data Persistence: encoding and decoding ledgers to and from a
//     human-readable, version-controllable JSONL format.
//
// Every reconstructed row satisfies two invariants: day-to-day continuity
// (each day starts where the previous one ended) and an additive accounting
// identity (the end balance is the start balance plus the day's decomposed
// flows). Calculators are stateless pure functions of their inputs, which
// makes recomputation idempotent and safe to re-run under retries.
//
// This package serves as the foundational logic for the `reck` command-line
// tool; the store and syncer subpackages add persistence and per-account
// orchestration on top of it.
package reckon
