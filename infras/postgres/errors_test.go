package postgres_test

import (
	"errors"
	"fmt"
	"testing"

	"lodge/infras/postgres"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestConstraintViolations(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		unique     bool
		foreignKey bool
	}{
		{name: "unique", err: &pq.Error{Code: "23505"}, unique: true},
		{name: "wrapped unique", err: fmt.Errorf("failed to insert data (property): %w", &pq.Error{Code: "23505"}), unique: true},
		{name: "foreign key", err: &pq.Error{Code: "23503"}, foreignKey: true},
		{name: "wrapped foreign key", err: fmt.Errorf("wrapped: %w", &pq.Error{Code: "23503"}), foreignKey: true},
		{name: "other postgres error", err: &pq.Error{Code: "42P01"}},
		{name: "plain error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.unique, postgres.IsUniqueViolation(tt.err))
			assert.Equal(t, tt.foreignKey, postgres.IsForeignKeyViolation(tt.err))
		})
	}
}
