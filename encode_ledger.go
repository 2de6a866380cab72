package portfolio

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// DecodeLedger decodes transactions from a stream of JSONL data and returns
// a sorted Ledger. Transactions without an id get a random one.
func DecodeLedger(r io.Reader) (*Ledger, error) {
	ledger := NewLedger()
	scanner := bufio.NewScanner(r)
	var txs []Transaction
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}
		var tx Transaction
		if err := json.Unmarshal(lineBytes, &tx); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if err := tx.Validate(); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading ledger: %w", err)
	}
	if err := ledger.Append(txs...); err != nil {
		return nil, err
	}
	return ledger, nil
}

// EncodeTransaction writes a single transaction as one JSON line.
func EncodeTransaction(w io.Writer, tx Transaction) error {
	jsonData, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}
	if _, err := w.Write(append(jsonData, '\n')); err != nil {
		return fmt.Errorf("failed to write transaction: %w", err)
	}
	return nil
}

// EncodeLedger writes the ledger in chronological order in JSONL format.
func EncodeLedger(w io.Writer, ledger *Ledger) error {
	for _, tx := range ledger.transactions {
		if err := EncodeTransaction(w, tx); err != nil {
			return err
		}
	}
	return nil
}

// DecodeInstruments decodes instruments from a stream of JSONL data.
func DecodeInstruments(r io.Reader) (Instruments, error) {
	registry := make(Instruments)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue
		}
		var temp struct {
			Instrument
			Type string `json:"type"`
		}
		if err := json.Unmarshal(lineBytes, &temp); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		in := temp.Instrument
		if temp.Type != "" {
			t, err := ParseInstrumentType(temp.Type)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			in.Type = t
		}
		if in.ID == "" {
			return nil, fmt.Errorf("line %d: instrument has no id", line)
		}
		registry.Add(in)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading instruments: %w", err)
	}
	return registry, nil
}

// EncodeInstruments writes instruments as JSON lines, in id order.
func EncodeInstruments(w io.Writer, r Instruments) error {
	enc := json.NewEncoder(w)
	for _, id := range slices.Sorted(maps.Keys(r)) {
		if err := enc.Encode(r[id]); err != nil {
			return fmt.Errorf("failed to write instrument %q: %w", id, err)
		}
	}
	return nil
}
