package env

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMachineIDStable(t *testing.T) {
	id := MachineID()
	require.NotEmpty(t, id)
	require.Equal(t, id, MachineID())
}

func TestHostname(t *testing.T) {
	require.NotEmpty(t, Hostname())
}
