package crc

import (
	"encoding/binary"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChecksum(t *testing.T) {
	testCases := []struct {
		name   string
		in     []byte
		expect uint32
	}{
		{"empty", nil, 0xffffffff},
		{"zero word", []byte{0, 0, 0, 0}, 0xc704dd7b},
		{"one word", []byte{1, 2, 3, 4}, 0x1dabe74f},
		{"trailing bytes ignored", []byte{1, 2, 3, 4, 5, 6, 7}, 0x1dabe74f},
		{"short input", []byte{1, 2, 3}, 0xffffffff},
		{"all ones", []byte{0xff, 0xff, 0xff, 0xff}, 0},
		{"ascii", []byte("123456789"), 0xfefc54f9},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, Checksum(tc.in))
			require.Equal(t, tc.expect, Checksum(tc.in), "not deterministic")
		})
	}
}

func TestVerifyAndAppend(t *testing.T) {
	frame := []byte{
		0x4e, 0x45, 0x01, 0x00, 0x02,
		0x07, 0xe8, 0x03, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0x01, 0, 0,
		0x00,
	}
	frame = frame[:20]
	full := Append(append([]byte(nil), frame...))
	require.Len(t, full, 24)
	// checked against an independent word-wise implementation.
	require.Equal(t, uint32(0xf86d3d4b), binary.LittleEndian.Uint32(full[20:]))
	require.True(t, Verify(full))

	for i := 0; i < 20; i++ {
		t.Run(fmt.Sprintf("corrupt byte %d", i), func(t *testing.T) {
			bad := append([]byte(nil), full...)
			bad[i] ^= 0x5a
			require.False(t, Verify(bad))
		})
	}

	zeroed := append([]byte(nil), full...)
	copy(zeroed[20:], []byte{0, 0, 0, 0})
	require.False(t, Verify(zeroed))
	require.False(t, Verify([]byte{1, 2, 3}))
}

func TestHash(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog!")
	h := New()
	require.Equal(t, Size, h.Size())
	require.Equal(t, WordSize, h.BlockSize())
	for _, chunk := range [][]byte{data[:1], data[1:6], data[6:7], data[7:]} {
		n, err := h.Write(chunk)
		require.NoError(t, err)
		require.Equal(t, len(chunk), n)
	}
	require.Equal(t, Checksum(data), h.Sum32())
	sum := h.Sum(nil)
	require.Equal(t, Checksum(data), binary.BigEndian.Uint32(sum))

	h.Reset()
	require.Equal(t, Init, h.Sum32())
	h.Write(data[:3])
	require.Equal(t, Init, h.Sum32(), "partial word must not enter the sum")
}
