package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithReason(t *testing.T) {
	err := fmt.Errorf("register: %w", WithReason(ErrorAlreadyExists, ReasonEmailAlreadyInUse))

	assert.ErrorIs(t, err, ErrorAlreadyExists)
	assert.Equal(t, ReasonEmailAlreadyInUse, ReasonOf(err))
	assert.Equal(t, "register: auth/email-already-in-use: already exists", err.Error())
}

func TestReasonOf_None(t *testing.T) {
	assert.Empty(t, ReasonOf(errors.New("plain")))
	assert.Empty(t, ReasonOf(nil))
}
