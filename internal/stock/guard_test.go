package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPurchasable(t *testing.T) {
	assert.NoError(t, CheckPurchasable(1))
	assert.NoError(t, CheckPurchasable(500))
	assert.ErrorIs(t, CheckPurchasable(0), ErrOutOfStock)
	assert.ErrorIs(t, CheckPurchasable(-1), ErrOutOfStock)
}

func TestClampIncrement(t *testing.T) {
	tests := []struct {
		name       string
		current    int
		delta      int
		knownStock int
		wantQty    int
		wantRemove bool
		wantErr    error
	}{
		{"simple increment", 2, 1, 10, 3, false, nil},
		{"increment to ceiling", 9, 1, 10, 10, false, nil},
		{"increment past ceiling clamps", 9, 5, 10, 10, false, ErrStockLimitReached},
		{"add past ceiling from zero", 0, 15, 10, 10, false, ErrStockLimitReached},
		{"unknown stock never clamps", 5, 100, 0, 105, false, nil},
		{"decrement", 3, -1, 10, 2, false, nil},
		{"decrement to zero removes", 1, -1, 10, 0, true, nil},
		{"decrement below zero removes", 1, -5, 10, 0, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qty, remove, err := ClampIncrement(tt.current, tt.delta, tt.knownStock)
			assert.Equal(t, tt.wantQty, qty)
			assert.Equal(t, tt.wantRemove, remove)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
