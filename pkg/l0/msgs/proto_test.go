package msgs

import (
	"testing"
	"time"

	structpb "github.com/golang/protobuf/ptypes/struct"
	"github.com/stretchr/testify/require"
)

func TestProtoEncoding(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	d := RawNavData{Seq: 9, Height: 6000, Roll: -10, Validity: ValidHeight | ValidRoll}.Scale(ts)

	s := d.Struct()
	_, isNull := s.Fields["pitch"].GetKind().(*structpb.Value_NullValue)
	require.True(t, isNull, "absent field must encode as null")
	data, err := d.Encode()
	require.NoError(t, err)

	decoded, err := DecodeNavDataProto(data)
	require.NoError(t, err)
	require.True(t, ts.Equal(decoded.Time))
	require.Equal(t, d.Seq, decoded.Seq)
	require.Equal(t, d.Validity, decoded.Validity)
	require.Equal(t, d.Height, decoded.Height)
	require.Equal(t, d.Roll, decoded.Roll)
	require.False(t, decoded.Pitch.Valid())
	require.False(t, decoded.Yaw.Valid())
	require.False(t, decoded.VerticalVelocity.Valid())
}

func TestProtoDecodeBadTimestamp(t *testing.T) {
	d := NavData{}
	s := d.Struct()
	s.Fields[KeyTimestamp] = stringValue("yesterday")
	_, err := NavDataFromStruct(s)
	require.Error(t, err)
}
