package reposhared

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

// TxClosure runs fn inside a READ COMMITTED transaction, committing on a nil
// error and rolling back otherwise. Row-level locking inside fn keeps
// concurrent transitions on the same payment from interleaving.
func TxClosure[T any](ctx context.Context, db *sqlx.DB, fn func(ctx context.Context, tx *sqlx.Tx) (T, error)) (T, error) {
	var zero T
	tx, err := db.BeginTxx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return zero, err
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	res, err := fn(ctx, tx)
	if err != nil {
		tx.Rollback()
		return res, err
	}

	if err := tx.Commit(); err != nil {
		return res, err
	}
	return res, nil
}
