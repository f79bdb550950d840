package schema

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidate(t *testing.T) {
	pathSchema := &Schema{
		"type":     "object",
		"required": []string{"path"},
		"properties": map[string]any{
			"path": map[string]any{"type": "string"},
		},
	}

	t.Run("Should accept valid input", func(t *testing.T) {
		result, err := pathSchema.Validate(context.Background(), map[string]any{"path": "a/b.txt"})
		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.Valid)
	})

	t.Run("Should reject missing required property", func(t *testing.T) {
		_, err := pathSchema.Validate(context.Background(), map[string]any{})
		require.Error(t, err)
	})

	t.Run("Should reject wrong property type", func(t *testing.T) {
		_, err := pathSchema.Validate(context.Background(), map[string]any{"path": 42})
		require.Error(t, err)
	})

	t.Run("Should pass through nil schema", func(t *testing.T) {
		var nilSchema *Schema
		result, err := nilSchema.Validate(context.Background(), map[string]any{"anything": true})
		require.NoError(t, err)
		assert.Nil(t, result)
	})
}
