package collector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aforti1/clarity-cash/internal/model"
)

// Source supplies the transaction batch to be scored for a window.
// A source may return transactions dated before w.Start; the scoring
// engine uses them for trailing lookbacks.
type Source interface {
	Fetch(ctx context.Context, w model.Window) ([]model.Transaction, error)
	Name() string
}

// MockSource returns fixed data for development and testing.
type MockSource struct {
	Transactions []model.Transaction
	Err          error
	Calls        int
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Fetch(_ context.Context, _ model.Window) ([]model.Transaction, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]model.Transaction(nil), m.Transactions...), nil
}

// decodeBatch accepts either a bare JSON array of transactions or an
// object with a "transactions" array.
func decodeBatch(data []byte) ([]model.Transaction, error) {
	var txns []model.Transaction
	if err := json.Unmarshal(data, &txns); err == nil {
		return txns, nil
	}
	var envelope struct {
		Transactions []model.Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return envelope.Transactions, nil
}
