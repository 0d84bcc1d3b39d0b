package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrVarDuplicate, "variable already declared")
	assert.Equal(t, `[VAR_DUPLICATE] variable already declared`, err.Error())
	assert.Equal(t, ErrVarDuplicate, GetErrorCode(err))
}

func TestWrap(t *testing.T) {
	inner := stderrors.New("permission denied")
	err := Wrapf(inner, ErrFileAccess, "cannot read %s", "/etc/shadow")

	assert.Contains(t, err.Error(), "FILE_ACCESS")
	assert.Contains(t, err.Error(), "permission denied")
	assert.ErrorIs(t, err, inner)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrInternal, "ignored"))
}

func TestIsErrorCode(t *testing.T) {
	err := Newf(ErrVarCycle, "cycle involving: %s", "a, b")
	assert.True(t, IsErrorCode(err, ErrVarCycle))
	assert.False(t, IsErrorCode(err, ErrVarDuplicate))
	assert.False(t, IsErrorCode(stderrors.New("plain"), ErrVarCycle))
}

func TestIsErrorCode_Wrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrHookFailed, "hook exited 1"))
	assert.True(t, IsErrorCode(err, ErrHookFailed))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrCommandRun, "command failed").WithDetail("stderr", "boom")

	details := GetErrorDetails(err)
	require.NotNil(t, details)
	assert.Equal(t, "boom", details["stderr"])
}

func TestErrorsIs_MatchesOnCode(t *testing.T) {
	err := Newf(ErrApplyDeclined, "declined for %s", "~/.vimrc")
	assert.True(t, stderrors.Is(err, New(ErrApplyDeclined, "any message")))
}
