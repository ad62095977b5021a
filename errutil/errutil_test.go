package errutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirst(t *testing.T) {
	require.NoError(t, First())
	require.NoError(t, First(nil, nil))
	err := errors.New("boom")
	require.Equal(t, err, First(nil, err, errors.New("later")))
}

func TestFatalIf(t *testing.T) {
	require.NotPanics(t, func() { FatalIf(nil) })
	require.Panics(t, func() { FatalIf(errors.New("bad")) })
}

func TestBugOn(t *testing.T) {
	require.NotPanics(t, func() { BugOn(false, "unreachable") })
	require.Panics(t, func() { BugOn(true, "unreachable") })
}
