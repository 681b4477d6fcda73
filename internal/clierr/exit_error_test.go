package clierr

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeOf(t *testing.T) {
	assert.Equal(t, 0, ExitCodeOf(nil))
	assert.Equal(t, 1, ExitCodeOf(errors.New("plain")))
	assert.Equal(t, CodeConfig, ExitCodeOf(New(CodeConfig, "bad config")))

	wrapped := fmt.Errorf("outer: %w", New(CodeRemote, "trello down"))
	assert.Equal(t, CodeRemote, ExitCodeOf(wrapped))
}

func TestWrap(t *testing.T) {
	err := Wrap(CodeUsage, "invalid velocity", os.ErrInvalid)

	assert.Equal(t, "invalid velocity: invalid argument", err.Error())
	assert.ErrorIs(t, err, os.ErrInvalid)
	assert.Equal(t, CodeUsage, ExitCodeOf(err))
}

func TestWrap_NilCause(t *testing.T) {
	err := Wrap(CodeUsage, "missing flag", nil)
	assert.Equal(t, "missing flag", err.Error())
	assert.Nil(t, errors.Unwrap(err))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, 1, ExitCodeOf(New(0, "zero")))
	assert.Equal(t, 1, ExitCodeOf(Newf(-3, "negative %d", -3)))
	assert.Equal(t, "negative -3", Newf(-3, "negative %d", -3).Error())
}
