package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/smart-categorizer/internal/model"
)

// ErrNoTransactions is returned when the input holds no transactions.
var ErrNoTransactions = errors.New("no transactions in input")

// ReadTransactions decodes transactions from a JSON array or from JSON lines
// (one object per line). Blank lines are skipped.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	br := bufio.NewReader(r)

	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return nil, ErrNoTransactions
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	var txns []model.Transaction
	if first == '[' {
		if err := json.NewDecoder(br).Decode(&txns); err != nil {
			return nil, fmt.Errorf("failed to decode transaction array: %w", err)
		}
	} else {
		txns, err = readLines(br)
		if err != nil {
			return nil, err
		}
	}

	if len(txns) == 0 {
		return nil, ErrNoTransactions
	}
	for i, txn := range txns {
		if strings.TrimSpace(txn.Description) == "" {
			return nil, fmt.Errorf("transaction %d (%q): description is required", i, txn.ID)
		}
	}
	return txns, nil
}

func readLines(br *bufio.Reader) ([]model.Transaction, error) {
	var txns []model.Transaction
	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var txn model.Transaction
		if err := json.Unmarshal(raw, &txn); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		txns = append(txns, txn)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return txns, nil
}

// peekNonSpace discards leading whitespace and returns the next byte unread.
func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if b != ' ' && b != '\t' && b != '\n' && b != '\r' {
			return b, br.UnreadByte()
		}
	}
}
