package portfolio

import (
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/etnz/rfportfolio/date"
)

// Ledger is the chronological history of transactions.
//
// Transactions are immutable: editing one is a deletion followed by an
// insertion, and the affected positions of a Book are rebuilt by replay.
type Ledger struct {
	transactions []Transaction
	ids          map[string]int
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{ids: make(map[string]int)}
}

// Append appends transactions and maintains the chronological order.
// Transactions with an id already in the ledger are rejected.
func (l *Ledger) Append(txs ...Transaction) error {
	seen := make(map[string]bool)
	for _, tx := range txs {
		if _, exists := l.ids[tx.ID]; exists || seen[tx.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, tx.ID)
		}
		seen[tx.ID] = true
	}
	l.transactions = append(l.transactions, txs...)
	l.stableSort()
	return nil
}

// Len returns the number of transactions.
func (l *Ledger) Len() int { return len(l.transactions) }

// Get returns a transaction by id.
func (l *Ledger) Get(id string) (Transaction, bool) {
	i, ok := l.ids[id]
	if !ok {
		return Transaction{}, false
	}
	return l.transactions[i], true
}

// All returns a copy of every transaction in chronological order.
func (l *Ledger) All() []Transaction { return slices.Clone(l.transactions) }

// Transactions yields the transactions accepted by every filter, in
// chronological order.
func (l *Ledger) Transactions(filters ...func(Transaction) bool) iter.Seq[Transaction] {
	return func(yield func(Transaction) bool) {
	next:
		for _, tx := range l.transactions {
			for _, filter := range filters {
				if !filter(tx) {
					continue next
				}
			}
			if !yield(tx) {
				return
			}
		}
	}
}

// ByKey selects transactions of one position.
func ByKey(key Key) func(Transaction) bool {
	return func(tx Transaction) bool { return tx.Key() == key }
}

// ByAccount selects transactions of one account.
func ByAccount(account string) func(Transaction) bool {
	return func(tx Transaction) bool { return tx.Account == account }
}

// Until selects transactions on or before day.
func Until(day date.Date) func(Transaction) bool {
	return func(tx Transaction) bool { return !tx.Date().After(day) }
}

// History returns the transactions of one position.
func (l *Ledger) History(key Key) []Transaction {
	return slices.Collect(l.Transactions(ByKey(key)))
}

// Book replays the whole ledger into a new Book.
func (l *Ledger) Book() (*Book, error) { return Replay(l.transactions) }

// Remove deletes a transaction and rebuilds its position in book. When the
// remaining history is inconsistent (for instance removing a buy that a later
// sell relies on) the deletion is rolled back and the error returned.
func (l *Ledger) Remove(id string, book *Book) error {
	old, ok := l.Get(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return l.edit(book, old, func(txs []Transaction) []Transaction {
		return slices.DeleteFunc(txs, func(tx Transaction) bool { return tx.ID == id })
	})
}

// Replace substitutes a corrected transaction for the one with id and
// rebuilds the affected positions in book. The correction may move the
// transaction to another position or date. On error nothing changes.
func (l *Ledger) Replace(id string, corrected Transaction, book *Book) error {
	old, ok := l.Get(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if corrected.ID != id {
		if _, exists := l.ids[corrected.ID]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateID, corrected.ID)
		}
	}
	if err := corrected.Validate(); err != nil {
		return err
	}
	keys := []Key{old.Key()}
	if corrected.Key() != old.Key() {
		keys = append(keys, corrected.Key())
	}
	return l.edit(book, old, func(txs []Transaction) []Transaction {
		txs = slices.DeleteFunc(txs, func(tx Transaction) bool { return tx.ID == id })
		return append(txs, corrected)
	}, keys[1:]...)
}

// edit applies change to a copy of the history, replays the touched
// positions on a scratch book and commits both only if the replay succeeds.
func (l *Ledger) edit(book *Book, old Transaction, change func([]Transaction) []Transaction, extra ...Key) error {
	candidate := &Ledger{transactions: change(slices.Clone(l.transactions))}
	candidate.stableSort()

	keys := append([]Key{old.Key()}, extra...)
	if book != nil {
		scratch := &Book{positions: make(map[Key]*position), realized: book.Realized()}
		for k, p := range book.positions {
			scratch.positions[k] = p
		}
		for _, key := range keys {
			if err := scratch.ReplayPosition(key, candidate.transactions); err != nil {
				return err
			}
		}
		book.positions, book.realized = scratch.positions, scratch.realized
	}
	l.transactions, l.ids = candidate.transactions, candidate.ids
	return nil
}

// stableSort sorts the ledger by transaction time. Transactions at the same
// time keep their relative order.
func (l *Ledger) stableSort() {
	slices.SortStableFunc(l.transactions, func(a, b Transaction) int { return a.Time.Compare(b.Time) })
	l.ids = make(map[string]int, len(l.transactions))
	for i, tx := range l.transactions {
		l.ids[tx.ID] = i
	}
}

// Period returns the time range covered by the ledger.
func (l *Ledger) Period() (first, last time.Time) {
	if len(l.transactions) == 0 {
		return
	}
	return l.transactions[0].Time, l.transactions[len(l.transactions)-1].Time
}
