package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError(t *testing.T) {
	underlying := errors.New("invalid value")
	err := NewConfigError("thread_count", "-1", underlying)

	assert.Equal(t, "thread_count", err.Field)
	assert.Equal(t, "-1", err.Value)
	assert.True(t, errors.Is(err, underlying))
	assert.False(t, err.Timestamp.IsZero())
	assert.Contains(t, err.Error(), "thread_count")
	assert.Contains(t, err.Error(), "invalid value")
}

func TestIngestError(t *testing.T) {
	underlying := errors.New("permission denied")
	err := NewIngestError("open", "/data/doc.txt", underlying)

	assert.Equal(t, "open", err.Operation)
	assert.Equal(t, "/data/doc.txt", err.Path)
	assert.True(t, errors.Is(err, underlying))
	assert.Contains(t, err.Error(), "/data/doc.txt")
}

func TestProtocolError_WithUnderlying(t *testing.T) {
	underlying := errors.New("unexpected EOF")
	err := NewProtocolError("read header", underlying)

	assert.True(t, errors.Is(err, underlying))
	assert.Contains(t, err.Error(), "read header")
	assert.Contains(t, err.Error(), "unexpected EOF")
}

func TestProtocolError_WithoutUnderlying(t *testing.T) {
	err := NewProtocolError("unknown request kind 9", nil)
	assert.Nil(t, err.Unwrap())
	assert.Equal(t, "protocol: unknown request kind 9", err.Error())
}

func TestRequestError(t *testing.T) {
	err := NewRequestError("file does not exist: %s", "/missing")
	assert.Equal(t, "file does not exist: /missing", err.Error())
}
