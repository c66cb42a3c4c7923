package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	err := Newf("seed %d not found", 42).
		Component("datastore").
		Category(CategoryNotFound).
		Context("seed_id", 42).
		Build()

	require.Error(t, err)
	assert.Equal(t, "seed 42 not found", err.Error())
	assert.Equal(t, "datastore", err.Component)
	assert.Equal(t, CategoryNotFound, err.Category)
	assert.Equal(t, 42, err.Context["seed_id"])
	assert.False(t, err.Timestamp.IsZero())
}

func TestBuilder_DefaultCategory(t *testing.T) {
	err := Newf("something broke").Build()
	assert.Equal(t, CategoryGeneric, err.Category)
}

func TestEnhancedError_Unwrap(t *testing.T) {
	sentinel := NewStd("underlying failure")
	wrapped := New(fmt.Errorf("while saving: %w", sentinel)).
		Category(CategoryDatabase).
		Build()

	assert.True(t, Is(wrapped, sentinel))
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Category
	}{
		{"enhanced", Newf("x").Category(CategoryValidation).Build(), CategoryValidation},
		{"wrapped enhanced", fmt.Errorf("outer: %w", Newf("x").Category(CategoryDuplicate).Build()), CategoryDuplicate},
		{"plain", NewStd("plain"), CategoryGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.err))
		})
	}
}

func TestHasCategory(t *testing.T) {
	err := Newf("dup").Category(CategoryDuplicate).Build()
	assert.True(t, HasCategory(err, CategoryDuplicate))
	assert.False(t, HasCategory(err, CategoryValidation))
	assert.False(t, HasCategory(NewStd("plain"), CategoryDuplicate))
}

func TestGetContext_Copies(t *testing.T) {
	err := Newf("x").Context("k", "v").Build()
	ctx := err.GetContext()
	ctx["k"] = "mutated"
	assert.Equal(t, "v", err.Context["k"])
}
