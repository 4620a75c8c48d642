package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverable(t *testing.T) {
	assert.True(t, Recoverable(NewMalformedTimestamp("garbage", nil)))
	assert.True(t, Recoverable(NewMissingField("title")))
	assert.True(t, Recoverable(NewSinkWriteError("abc123", errors.New("throttled"))))

	assert.False(t, Recoverable(NewUpstreamError("get records", errors.New("timeout"))))
	assert.False(t, Recoverable(NewInternalError("boom", nil)))
	assert.False(t, Recoverable(errors.New("plain error")))
	assert.False(t, Recoverable(nil))
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("cycle failed: %w", NewUpstreamError("describe stream", errors.New("no such stream")))

	assert.True(t, IsUpstream(err))
	assert.False(t, IsSinkWrite(err))

	perr := GetPipelineError(err)
	assert.NotNil(t, perr)
	assert.Equal(t, ErrorTypeUpstream, perr.Type)
}

func TestErrorMessageIncludesRecordID(t *testing.T) {
	err := NewMissingField("title").WithRecord("abc123")
	assert.Contains(t, err.Error(), "abc123")
	assert.Contains(t, err.Error(), "MISSING_FIELD")
	assert.True(t, IsMissingField(err))
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("access denied")
	err := NewSinkWriteError("abc123", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsMalformedTimestamp(NewMalformedTimestamp("x", nil)))
}
