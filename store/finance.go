package store

import "context"

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

type Transaction struct {
	ID          int32
	UserID      int32
	Type        TransactionType
	Amount      float64
	Category    string
	Description string
	Ts          int64
	CreatedTs   int64
}

type FindTransaction struct {
	ID     *int32
	UserID *int32
	Type   *TransactionType
	// TsAfter and TsBefore bound the transaction date, both inclusive.
	TsAfter  *int64
	TsBefore *int64

	Limit *int
}

type DeleteTransaction struct {
	ID     int32
	UserID int32
}

func (s *Store) CreateTransaction(ctx context.Context, create *Transaction) (*Transaction, error) {
	return s.driver.CreateTransaction(ctx, create)
}

// ListTransactions returns transactions ordered by ts descending.
func (s *Store) ListTransactions(ctx context.Context, find *FindTransaction) ([]*Transaction, error) {
	return s.driver.ListTransactions(ctx, find)
}

func (s *Store) DeleteTransaction(ctx context.Context, delete *DeleteTransaction) error {
	return s.driver.DeleteTransaction(ctx, delete)
}
