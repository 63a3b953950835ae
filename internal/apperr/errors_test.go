package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindAndMessage(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("submit: %w", Persistence(MsgSaveFailed+": "+cause.Error(), cause))

	assert.Equal(t, KindPersistence, KindOf(err))
	assert.True(t, Is(err, KindPersistence))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to save application: connection refused", Message(err))
}

func TestMissingFields(t *testing.T) {
	err := MissingFields([]string{"email", "phone"})

	assert.Equal(t, MsgRequiredFields, err.Message)
	assert.Equal(t, "missing: email, phone", err.Details)
	assert.Equal(t, "VALIDATION_ERROR: All required fields must be filled", err.Error())
}

func TestForeignErrors(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, KindUnknown, KindOf(err))
	assert.False(t, Is(nil, KindUnknown))
	assert.Equal(t, MsgUnexpectedError, Message(err))
	assert.Empty(t, Message(nil))
}
