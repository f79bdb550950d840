package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Run("Should format code and message", func(t *testing.T) {
		err := NewError(errors.New("boom"), "Internal", map[string]any{"path": "/x"})
		assert.Equal(t, "Internal: boom", err.Error())
		assert.Equal(t, "Internal", err.Code)
	})

	t.Run("Should unwrap the cause", func(t *testing.T) {
		cause := errors.New("root cause")
		err := NewError(cause, "Internal", nil)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("Should render wire form", func(t *testing.T) {
		err := NewError(errors.New("denied"), "PermissionDenied", map[string]any{"path": "/etc"})
		assert.JSONEq(
			t,
			`{"code":"PermissionDenied","message":"denied","details":{"path":"/etc"}}`,
			err.JSON(),
		)
	})
}

func TestRequestID(t *testing.T) {
	t.Run("Should round trip through context", func(t *testing.T) {
		id := NewRequestID()
		ctx := WithRequestID(context.Background(), id)
		got, err := GetRequestID(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	})

	t.Run("Should report missing request id", func(t *testing.T) {
		_, err := GetRequestID(context.Background())
		assert.ErrorIs(t, err, ErrNoRequestID)
	})
}

func TestOutput(t *testing.T) {
	t.Run("Should fetch values safely", func(t *testing.T) {
		output := Output{"key": "value"}
		assert.Equal(t, "value", output.Get("key"))
		assert.Nil(t, output.Get("missing"))
		var nilOutput Output
		assert.Nil(t, nilOutput.Get("key"))
	})
}
