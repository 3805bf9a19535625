package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// unsetForTest removes key for the rest of the test. Call t.Setenv(key, ...)
// first so the original value is restored on cleanup.
func unsetForTest(t *testing.T, key string) {
	t.Helper()
	require.NoError(t, os.Unsetenv(key))
}
