package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTransientMessage(t *testing.T) {
	transient := []string{
		"upstream returned 503",
		"503 Service Unavailable",
		"Service Unavailable",
		"SERVICE UNAVAILABLE",
		"request timed out after 90s",
		"context deadline exceeded: request Timed Out",
	}
	for _, msg := range transient {
		assert.True(t, IsTransientMessage(msg), msg)
	}

	permanent := []string{
		"400 Bad Request",
		"invalid api key",
		"connection refused",
		"timeout", // only the exact "timed out" phrasing counts
		"",
	}
	for _, msg := range permanent {
		assert.False(t, IsTransientMessage(msg), msg)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, ErrKindTransient, KindOf(Transient("op", errors.New("x"))))
	assert.Equal(t, ErrKindPermanent, KindOf(Permanent("op", errors.New("x"))))
	assert.Equal(t, ErrKindConfigMissing, KindOf(ConfigMissing("op", errors.New("x"))))
	assert.Equal(t, ErrKindNotFound, KindOf(NotFound("op", errors.New("x"))))

	// Untagged and wrapped errors
	assert.Equal(t, ErrKindPermanent, KindOf(errors.New("plain")))
	wrapped := fmt.Errorf("step failed: %w", Transient("op", errors.New("x")))
	assert.Equal(t, ErrKindTransient, KindOf(wrapped))
}

func TestPipelineError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := Transient("media", inner)

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "media: boom", err.Error())
}
