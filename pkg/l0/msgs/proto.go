package msgs

import (
	"fmt"
	"time"

	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"
)

// Keys used in the protobuf Struct encoding of NavData.
const (
	KeyTimestamp = "timestamp"
	KeySeq       = "seq"
	KeyValidity  = "validity"
)

// Struct converts NavData into a protobuf Struct.
// Absent fields are encoded as null values.
func (d *NavData) Struct() *structpb.Struct {
	s := &structpb.Struct{Fields: map[string]*structpb.Value{
		KeyTimestamp: stringValue(d.Time.UTC().Format(time.RFC3339Nano)),
		KeySeq:       numberValue(float64(d.Seq)),
		KeyValidity:  numberValue(float64(d.Validity)),
	}}
	for _, f := range Fields {
		if v, ok := d.Get(f).Get(); ok {
			s.Fields[f.String()] = numberValue(v)
		} else {
			s.Fields[f.String()] = nullValue()
		}
	}
	return s
}

// Encode encodes NavData using protobuf.
func (d *NavData) Encode() ([]byte, error) {
	return proto.Marshal(d.Struct())
}

// NavDataFromStruct reverses Struct.
func NavDataFromStruct(s *structpb.Struct) (d NavData, err error) {
	fields := s.GetFields()
	ts := fields[KeyTimestamp].GetStringValue()
	if d.Time, err = time.Parse(time.RFC3339Nano, ts); err != nil {
		return d, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}
	d.Seq = uint8(fields[KeySeq].GetNumberValue())
	d.Validity = Validity(fields[KeyValidity].GetNumberValue())
	for _, f := range Fields {
		val, ok := fields[f.String()]
		if !ok {
			continue
		}
		num, isNum := val.GetKind().(*structpb.Value_NumberValue)
		if !isNum {
			continue
		}
		switch f {
		case FieldHeight:
			d.Height = Some(num.NumberValue)
		case FieldVerticalVelocity:
			d.VerticalVelocity = Some(num.NumberValue)
		case FieldRoll:
			d.Roll = Some(num.NumberValue)
		case FieldPitch:
			d.Pitch = Some(num.NumberValue)
		case FieldYaw:
			d.Yaw = Some(num.NumberValue)
		}
	}
	return d, nil
}

// DecodeNavDataProto decodes bytes produced by Encode.
func DecodeNavDataProto(data []byte) (NavData, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return NavData{}, err
	}
	return NavDataFromStruct(&s)
}

func numberValue(v float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: v}}
}

func stringValue(v string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: v}}
}

func nullValue() *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NullValue{NullValue: structpb.NullValue_NULL_VALUE}}
}
