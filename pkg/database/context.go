package database

import (
	"context"

	"github.com/jackc/pgx/v5"
)

type contextKey string

const (
	// TxKey is the context key for the transaction opened by DB.InTx.
	TxKey contextKey = "tx"
)

// GetTx retrieves the active transaction from context.
// Returns nil and false if not present.
func GetTx(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(TxKey).(pgx.Tx)
	return tx, ok
}

// SetTx stores a transaction in context.
func SetTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, TxKey, tx)
}

// querierFor returns the transaction in ctx, or fallback when there is none.
func querierFor(ctx context.Context, fallback Querier) Querier {
	if tx, ok := GetTx(ctx); ok {
		return tx
	}
	return fallback
}
