package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	t.Parallel()

	err := NewValidationError("url", "is required", nil)

	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "validation failed: url is required", err.Error())

	var ve *ValidationError
	assert.True(t, errors.As(error(err), &ve))
	assert.Equal(t, "url", ve.Field)
}

func TestNetworkError(t *testing.T) {
	t.Parallel()

	t.Run("status", func(t *testing.T) {
		err := &NetworkError{URL: "https://example.com", StatusCode: 503}
		assert.True(t, errors.Is(err, ErrNetwork))
		assert.Contains(t, err.Error(), "HTTP status 503")
	})

	t.Run("cause", func(t *testing.T) {
		err := &NetworkError{URL: "https://example.com", Err: context.DeadlineExceeded}
		assert.True(t, errors.Is(err, ErrNetwork))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})
}

func TestAnnotatorTimeoutWrapsAnnotator(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.Is(ErrAnnotatorTimeout, ErrAnnotator))
	assert.False(t, errors.Is(ErrAnnotator, ErrAnnotatorTimeout))
}

func TestExtractionResultPlainText(t *testing.T) {
	t.Parallel()

	r := ExtractionResult{Blocks: []ContentBlock{
		{Kind: BlockKindHeading, Text: "概述"},
		{Kind: BlockKindText, Text: "正文"},
	}}
	assert.Equal(t, "概述\n正文", r.PlainText())
}
