package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDuplicateError_Is(t *testing.T) {
	err := fmt.Errorf("create failed: %w", &DuplicateError{Field: "name", Value: "Sugar"})
	assert.True(t, errors.Is(err, ErrDuplicate))

	var dup *DuplicateError
	assert.True(t, errors.As(err, &dup))
	assert.Equal(t, "name", dup.Field)
}

func TestVersionConflictError_Is(t *testing.T) {
	err := fmt.Errorf("update failed: %w", &VersionConflictError{Expected: 4, Actual: 5})
	assert.True(t, errors.Is(err, ErrVersionConflict))

	var vc *VersionConflictError
	assert.True(t, errors.As(err, &vc))
	assert.Equal(t, int64(4), vc.Expected)
	assert.Equal(t, int64(5), vc.Actual)
}

func TestIsConstraint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"duplicate", ErrDuplicate, true},
		{"foreign key", ErrForeignKey, true},
		{"not null", ErrMissingField, true},
		{"check", ErrCheckViolation, true},
		{"undefined table", ErrUndefinedTable, true},
		{"wrapped duplicate", fmt.Errorf("x: %w", &DuplicateError{Field: "name"}), true},
		{"version conflict", ErrVersionConflict, false},
		{"unavailable", ErrUnavailable, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConstraint(tt.err))
		})
	}
}

func TestUserMessage_NeverLeaksDiagnostics(t *testing.T) {
	msg := UserMessage(errors.New(`pq: duplicate key value violates unique constraint "records_pkey"`))
	assert.Equal(t, "Something went wrong. Please try again.", msg)
}

func TestUserMessage_Duplicate(t *testing.T) {
	msg := UserMessage(fmt.Errorf("save: %w", &DuplicateError{Field: "name", Value: "Kaju Katli"}))
	assert.Contains(t, msg, "Kaju Katli")
	assert.Contains(t, msg, "already exists")
}
