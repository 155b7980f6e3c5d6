package msgs

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func requireValue(t *testing.T, expect float64, v Value) {
	t.Helper()
	val, ok := v.Get()
	require.True(t, ok, "value absent")
	require.InDelta(t, expect, val, 1e-9)
}

func TestDecodeNavData(t *testing.T) {
	ts := time.Unix(1700000000, 0)
	raw := RawNavData{
		Seq:              42,
		Height:           12000,
		VerticalVelocity: -500,
		Roll:             1234,
		Pitch:            -4321,
		Yaw:              32767,
		Validity:         ValidAll,
	}
	d, err := DecodeNavData(raw.Bytes(), ts)
	require.NoError(t, err)
	require.Equal(t, ts, d.Time)
	require.Equal(t, uint8(42), d.Seq)
	require.Equal(t, ValidAll, d.Validity)
	requireValue(t, 0.16784924*12000-1000, d.Height)
	requireValue(t, 9.155413e-3*-500, d.VerticalVelocity)
	requireValue(t, 9.587526e-5*1234, d.Roll)
	requireValue(t, 9.587526e-5*-4321, d.Pitch)
	requireValue(t, 9.587526e-5*32767, d.Yaw)
}

func TestDecodeNavDataHeightOnly(t *testing.T) {
	payload := []byte{7, 0xe8, 0x03, 1, 2, 3, 4, 5, 6, 7, 8, 0x01, 0, 0}
	d, err := DecodeNavData(payload, time.Time{})
	require.NoError(t, err)
	requireValue(t, -832.15076, d.Height)
	for _, f := range []Field{FieldVerticalVelocity, FieldRoll, FieldPitch, FieldYaw} {
		require.False(t, d.Get(f).Valid(), "%s should be absent", f)
	}
}

func TestDecodeNavDataValidityMask(t *testing.T) {
	for _, f := range Fields {
		t.Run(f.String(), func(t *testing.T) {
			raw := RawNavData{Height: 100, VerticalVelocity: 100, Roll: 100, Pitch: 100, Yaw: 100}
			raw.Validity = ValidAll &^ Validity(1<<uint(f))
			d, err := DecodeNavData(raw.Bytes(), time.Time{})
			require.NoError(t, err)
			for _, other := range Fields {
				require.Equal(t, other != f, d.Get(other).Valid(), "field %s", other)
			}
		})
	}
}

func TestDecodeNavDataSize(t *testing.T) {
	for _, size := range []int{0, 13, 15, 24} {
		_, err := DecodeNavData(make([]byte, size), time.Time{})
		require.True(t, errors.Is(err, ErrPayloadSize))
	}
}

func TestRawNavDataBytes(t *testing.T) {
	raw := RawNavData{Seq: 0xff, Height: -1, VerticalVelocity: 0x1234, Roll: -32768, Pitch: 1, Yaw: 2, Validity: 0x1f}
	b := raw.Bytes()
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0x34, 0x12, 0x00, 0x80, 0x01, 0x00, 0x02, 0x00, 0x1f, 0, 0}, b)
	parsed, err := ParseRawNavData(b)
	require.NoError(t, err)
	require.Equal(t, raw, parsed)
}

func TestRawConversions(t *testing.T) {
	require.Equal(t, int16(1000), RawHeight(0.16784924*1000-1000))
	require.Equal(t, int16(math.MaxInt16), RawHeight(1e9))
	require.Equal(t, int16(math.MinInt16), RawHeight(-1e9))
	require.Equal(t, int16(-200), RawVerticalVelocity(9.155413e-3*-200))
	require.Equal(t, int16(16384), RawAngle(9.587526e-5*16384))
}

func TestValidity(t *testing.T) {
	require.True(t, ValidAll.Has(ValidRoll|ValidYaw))
	require.False(t, ValidHeight.Has(ValidHeight|ValidPitch))
	require.Equal(t, "h-r-y", (ValidHeight | ValidRoll | ValidYaw).String())
	require.Equal(t, "-----", Validity(0).String())
}

func TestField(t *testing.T) {
	for _, f := range Fields {
		parsed, err := ParseField(f.String())
		require.NoError(t, err)
		require.Equal(t, f, parsed)
	}
	_, err := ParseField("altitude")
	require.Error(t, err)
	require.Equal(t, "Roll (rad)", FieldRoll.Label())
}

func TestValue(t *testing.T) {
	require.False(t, None.Valid())
	require.Equal(t, "-", None.String())
	require.Equal(t, "1.5", Some(1.5).String())

	out, err := json.Marshal(struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}{A: Some(2), B: None})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":2,"b":null}`, string(out))

	var v struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":0,"b":null}`), &v))
	requireValue(t, 0, v.A)
	require.False(t, v.B.Valid())
}
