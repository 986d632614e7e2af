package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@db:5432/onboarding":   "pgx5://u:p@db:5432/onboarding",
		"postgresql://u:p@db:5432/onboarding": "pgx5://u:p@db:5432/onboarding",
		"pgx5://u:p@db:5432/onboarding":       "pgx5://u:p@db:5432/onboarding",
	}
	for in, want := range tests {
		assert.Equal(t, want, databaseURL(in), in)
	}
}
