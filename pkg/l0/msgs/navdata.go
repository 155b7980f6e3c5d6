package msgs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"
)

// NavDataType is the message type of NavData.
const NavDataType byte = 0x02

// NavDataSize is the payload size of NavData in bytes.
const NavDataSize = 14

// Scale factors converting raw fixed-point values to physical units.
const (
	HeightScale           = 0.16784924  // m per LSB
	HeightOffset          = -1000.0     // m
	VerticalVelocityScale = 9.155413e-3 // m/s per LSB
	AngleScale            = 9.587526e-5 // rad per LSB
)

// ErrPayloadSize indicates the payload isn't NavDataSize bytes.
var ErrPayloadSize = errors.New("invalid NavData payload size")

// Validity is the validity bitfield of NavData.
type Validity uint8

// Validity bits.
const (
	ValidHeight Validity = 1 << iota
	ValidVerticalVelocity
	ValidRoll
	ValidPitch
	ValidYaw

	ValidAll = ValidHeight | ValidVerticalVelocity | ValidRoll | ValidPitch | ValidYaw
)

// Has checks if all bits in f are set.
func (v Validity) Has(f Validity) bool {
	return v&f == f
}

// String implements fmt.Stringer.
func (v Validity) String() string {
	var b [5]byte
	for n, c := range "hvrpy" {
		if v.Has(Validity(1 << uint(n))) {
			b[n] = byte(c)
		} else {
			b[n] = '-'
		}
	}
	return string(b[:])
}

// RawNavData holds the unscaled fields of a NavData payload.
type RawNavData struct {
	Seq              uint8
	Height           int16
	VerticalVelocity int16
	Roll             int16
	Pitch            int16
	Yaw              int16
	Validity         Validity
}

// NavData is a decoded, physically scaled sample.
type NavData struct {
	// Time is the capture time assigned when the frame was validated.
	Time time.Time `json:"timestamp"`
	// Seq wraps at 256 and is only meant for gap detection.
	Seq              uint8    `json:"seq"`
	Height           Value    `json:"height"`
	VerticalVelocity Value    `json:"vertical_velocity"`
	Roll             Value    `json:"roll"`
	Pitch            Value    `json:"pitch"`
	Yaw              Value    `json:"yaw"`
	Validity         Validity `json:"validity"`
}

// ParseRawNavData extracts the raw fields from a payload.
func ParseRawNavData(payload []byte) (r RawNavData, err error) {
	if len(payload) != NavDataSize {
		return r, fmt.Errorf("%w: %d", ErrPayloadSize, len(payload))
	}
	r.Seq = payload[0]
	r.Height = int16(binary.LittleEndian.Uint16(payload[1:3]))
	r.VerticalVelocity = int16(binary.LittleEndian.Uint16(payload[3:5]))
	r.Roll = int16(binary.LittleEndian.Uint16(payload[5:7]))
	r.Pitch = int16(binary.LittleEndian.Uint16(payload[7:9]))
	r.Yaw = int16(binary.LittleEndian.Uint16(payload[9:11]))
	r.Validity = Validity(payload[11])
	return r, nil
}

// DecodeNavData decodes a payload into a NavData stamped with t.
func DecodeNavData(payload []byte, t time.Time) (NavData, error) {
	r, err := ParseRawNavData(payload)
	if err != nil {
		return NavData{}, err
	}
	return r.Scale(t), nil
}

// Bytes encodes the payload. Reserved bytes are zero.
func (r RawNavData) Bytes() []byte {
	b := make([]byte, NavDataSize)
	b[0] = r.Seq
	binary.LittleEndian.PutUint16(b[1:3], uint16(r.Height))
	binary.LittleEndian.PutUint16(b[3:5], uint16(r.VerticalVelocity))
	binary.LittleEndian.PutUint16(b[5:7], uint16(r.Roll))
	binary.LittleEndian.PutUint16(b[7:9], uint16(r.Pitch))
	binary.LittleEndian.PutUint16(b[9:11], uint16(r.Yaw))
	b[11] = byte(r.Validity)
	return b
}

// Scale converts raw fields into physical units. Only fields with
// their validity bit set are present.
func (r RawNavData) Scale(t time.Time) NavData {
	d := NavData{Time: t, Seq: r.Seq, Validity: r.Validity}
	if r.Validity.Has(ValidHeight) {
		d.Height = Some(HeightScale*float64(r.Height) + HeightOffset)
	}
	if r.Validity.Has(ValidVerticalVelocity) {
		d.VerticalVelocity = Some(VerticalVelocityScale * float64(r.VerticalVelocity))
	}
	if r.Validity.Has(ValidRoll) {
		d.Roll = Some(AngleScale * float64(r.Roll))
	}
	if r.Validity.Has(ValidPitch) {
		d.Pitch = Some(AngleScale * float64(r.Pitch))
	}
	if r.Validity.Has(ValidYaw) {
		d.Yaw = Some(AngleScale * float64(r.Yaw))
	}
	return d
}

// RawHeight converts meters to the raw height, saturating at int16 range.
func RawHeight(m float64) int16 {
	return saturate((m - HeightOffset) / HeightScale)
}

// RawVerticalVelocity converts m/s to the raw vertical velocity.
func RawVerticalVelocity(mps float64) int16 {
	return saturate(mps / VerticalVelocityScale)
}

// RawAngle converts radians to a raw attitude angle.
func RawAngle(rad float64) int16 {
	return saturate(rad / AngleScale)
}

func saturate(v float64) int16 {
	v = math.Round(v)
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// Field identifies a physical field of NavData.
type Field int

// Fields of NavData.
const (
	FieldHeight Field = iota
	FieldVerticalVelocity
	FieldRoll
	FieldPitch
	FieldYaw
)

// Fields lists all fields in display order.
var Fields = []Field{FieldHeight, FieldVerticalVelocity, FieldRoll, FieldPitch, FieldYaw}

var fieldNames = [...]string{"height", "vertical_velocity", "roll", "pitch", "yaw"}

var fieldLabels = [...]string{"Height (m)", "Vertical Velocity (m/s)", "Roll (rad)", "Pitch (rad)", "Yaw (rad)"}

// String returns the field name.
func (f Field) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("field(%d)", int(f))
	}
	return fieldNames[f]
}

// Label returns the human readable label with unit.
func (f Field) Label() string {
	if f < 0 || int(f) >= len(fieldLabels) {
		return f.String()
	}
	return fieldLabels[f]
}

// ParseField parses a field name.
func ParseField(name string) (Field, error) {
	for n, s := range fieldNames {
		if s == name {
			return Field(n), nil
		}
	}
	return 0, fmt.Errorf("unknown field %q", name)
}

// Get returns the value of field f.
func (d *NavData) Get(f Field) Value {
	switch f {
	case FieldHeight:
		return d.Height
	case FieldVerticalVelocity:
		return d.VerticalVelocity
	case FieldRoll:
		return d.Roll
	case FieldPitch:
		return d.Pitch
	case FieldYaw:
		return d.Yaw
	}
	return None
}

// String implements fmt.Stringer.
func (d NavData) String() string {
	return fmt.Sprintf("#%03d [%s] h=%s vv=%s roll=%s pitch=%s yaw=%s",
		d.Seq, d.Validity, d.Height, d.VerticalVelocity, d.Roll, d.Pitch, d.Yaw)
}
