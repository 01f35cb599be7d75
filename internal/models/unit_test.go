package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFacing(t *testing.T) {
	for _, f := range AllFacings {
		got, err := ParseFacing(string(f))
		require.NoError(t, err)
		require.Equal(t, f, got)
	}

	for _, bad := range []string{"", "north", "NorthEast", " North", "Up"} {
		_, err := ParseFacing(bad)
		require.Error(t, err, "expected %q to be rejected", bad)
	}
}
