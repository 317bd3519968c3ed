package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

// stubTx is a pgx.Tx whose Rollback returns a fixed error.
// Every other method panics through the nil embedded interface.
type stubTx struct {
	pgx.Tx
	rollbackErr error
}

func (t stubTx) Rollback(context.Context) error { return t.rollbackErr }

func TestRollback(t *testing.T) {
	ctx := context.Background()
	failure := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"rolled back", nil, nil},
		{"already committed", pgx.ErrTxClosed, nil},
		{"already committed, wrapped", fmt.Errorf("rollback: %w", pgx.ErrTxClosed), nil},
		{"real failure", failure, failure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rollback(ctx, stubTx{rollbackErr: tt.err})
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
