package tracker

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hrygo/eidos/internal/errors"
	"github.com/hrygo/eidos/store"
)

// DefaultCategory is used for transactions entered without a category.
const DefaultCategory = "Other"

func (s *service) CreateTransaction(ctx context.Context, userID int32, input *TransactionInput) (*store.Transaction, error) {
	txType := store.TransactionType(input.Type)
	if txType != store.TransactionTypeIncome && txType != store.TransactionTypeExpense {
		return nil, errors.Validation("type must be income or expense")
	}
	if input.Amount <= 0 {
		return nil, errors.Validation("amount must be positive")
	}
	category := strings.TrimSpace(input.Category)
	if category == "" {
		category = DefaultCategory
	}
	date := s.now()
	if input.Date != "" {
		t, err := ParseTime(input.Date)
		if err != nil {
			return nil, err
		}
		date = t
	}

	transaction, err := s.store.CreateTransaction(ctx, &store.Transaction{
		UserID:      userID,
		Type:        txType,
		Amount:      input.Amount,
		Category:    category,
		Description: input.Description,
		Ts:          date.Unix(),
		CreatedTs:   s.now().Unix(),
	})
	if err != nil {
		return nil, storeError("failed to create transaction", err)
	}
	return transaction, nil
}

func (s *service) ListTransactions(ctx context.Context, userID int32, txType string, limit int) ([]*store.Transaction, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	find := &store.FindTransaction{UserID: &userID, Limit: &limit}
	if txType != "" {
		t := store.TransactionType(txType)
		if t != store.TransactionTypeIncome && t != store.TransactionTypeExpense {
			return nil, errors.Validation("type must be income or expense")
		}
		find.Type = &t
	}
	list, err := s.store.ListTransactions(ctx, find)
	if err != nil {
		return nil, storeError("failed to list transactions", err)
	}
	return list, nil
}

func (s *service) DeleteTransaction(ctx context.Context, userID, id int32) error {
	list, err := s.store.ListTransactions(ctx, &store.FindTransaction{ID: &id, UserID: &userID})
	if err != nil {
		return storeError("failed to get transaction", err)
	}
	if len(list) == 0 {
		return errors.NotFound("transaction")
	}
	if err := s.store.DeleteTransaction(ctx, &store.DeleteTransaction{ID: id, UserID: userID}); err != nil {
		return storeError("failed to delete transaction", err)
	}
	return nil
}

func (s *service) FinanceStats(ctx context.Context, userID int32) (*FinanceStats, error) {
	list, err := s.store.ListTransactions(ctx, &store.FindTransaction{UserID: &userID})
	if err != nil {
		return nil, storeError("failed to list transactions", err)
	}

	now := s.now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Unix()
	stats := &FinanceStats{}
	for _, t := range list {
		monthly := t.Ts >= monthStart
		switch t.Type {
		case store.TransactionTypeIncome:
			stats.TotalIncome += t.Amount
			if monthly {
				stats.MonthlyIncome += t.Amount
			}
		case store.TransactionTypeExpense:
			stats.TotalExpenses += t.Amount
			if monthly {
				stats.MonthlyExpenses += t.Amount
			}
		}
	}
	stats.Balance = round(stats.TotalIncome-stats.TotalExpenses, 2)
	stats.TotalIncome = round(stats.TotalIncome, 2)
	stats.TotalExpenses = round(stats.TotalExpenses, 2)
	stats.MonthlyIncome = round(stats.MonthlyIncome, 2)
	stats.MonthlyExpenses = round(stats.MonthlyExpenses, 2)
	stats.TopExpenseCategories = TopExpenseCategories(list, 5)
	for i := range stats.TopExpenseCategories {
		stats.TopExpenseCategories[i].Amount = round(stats.TopExpenseCategories[i].Amount, 2)
	}
	return stats, nil
}

// TopExpenseCategories sums expenses by category and returns the k largest.
// Ties keep the order in which the categories were first seen.
func TopExpenseCategories(list []*store.Transaction, k int) []CategoryAmount {
	sums := []CategoryAmount{}
	index := map[string]int{}
	for _, t := range list {
		if t.Type != store.TransactionTypeExpense {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(sums)
			index[t.Category] = i
			sums = append(sums, CategoryAmount{Category: t.Category})
		}
		sums[i].Amount += t.Amount
	}
	sort.SliceStable(sums, func(i, j int) bool {
		return sums[i].Amount > sums[j].Amount
	})
	if len(sums) > k {
		sums = sums[:k]
	}
	return sums
}
