// Package portfolio keeps the transactions of personal investment accounts
// and derives lots, holdings and realized gains from them.
//
// The core is the Book, a FIFO lot ledger: buys open lots, sells consume the
// oldest lots first and emit one RealizedEvent per consumed lot. A Book is
// always derivable by replaying the transaction Ledger, and edits to the
// Ledger (Remove, Replace) rebuild only the affected positions.
//
// Amounts use Money and Quantity, exact decimal types. Ledgers and
// instruments are persisted as JSONL, one record per line.
package portfolio
