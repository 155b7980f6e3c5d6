package serial

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

func TestMode(t *testing.T) {
	o := &Opener{BaudRate: 115200}
	mode := o.Mode()
	require.Equal(t, 115200, mode.BaudRate)
	require.Equal(t, 8, mode.DataBits)
	require.Equal(t, serial.NoParity, mode.Parity)
	require.Equal(t, serial.OneStopBit, mode.StopBits)
}

func TestOpenMissingPort(t *testing.T) {
	o := &Opener{BaudRate: 115200}
	_, err := o.Open(filepath.Join(t.TempDir(), "ttyMISSING"))
	require.Error(t, err)
}
