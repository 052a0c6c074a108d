package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/eidos/store"
)

func TestTransactionStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user, err := CreateTestingUser(ctx, ts, "saver")
	require.NoError(t, err)

	now := time.Now().Unix()
	creates := []*store.Transaction{
		{UserID: user.ID, Type: store.TransactionTypeIncome, Amount: 1000, Category: "Salary", Ts: now - 7200},
		{UserID: user.ID, Type: store.TransactionTypeExpense, Amount: 42.5, Category: "Food", Ts: now - 3600},
		{UserID: user.ID, Type: store.TransactionTypeExpense, Amount: 10, Category: "Transport", Ts: now},
	}
	for _, create := range creates {
		_, err := ts.CreateTransaction(ctx, create)
		require.NoError(t, err)
	}

	expense := store.TransactionTypeExpense
	list, err := ts.ListTransactions(ctx, &store.FindTransaction{UserID: &user.ID, Type: &expense})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Transport", list[0].Category)
	require.InDelta(t, 42.5, list[1].Amount, 0.0001)

	after, before := now-7200, now-3600
	windowed, err := ts.ListTransactions(ctx, &store.FindTransaction{UserID: &user.ID, TsAfter: &after, TsBefore: &before})
	require.NoError(t, err)
	require.Len(t, windowed, 2)

	require.NoError(t, ts.DeleteTransaction(ctx, &store.DeleteTransaction{ID: list[0].ID, UserID: user.ID}))
	all, err := ts.ListTransactions(ctx, &store.FindTransaction{UserID: &user.ID})
	require.NoError(t, err)
	require.Len(t, all, 2)
}
