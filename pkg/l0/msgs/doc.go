// Package msgs provides the L0 message schemas sent by the sensor.
package msgs

// The sensor streams one periodic message, NavData (type 0x02), which
// carries height, vertical velocity and attitude as fixed-point int16
// values together with a validity bitfield. Fields whose validity bit
// is cleared are absent and carry no value.
//
// Producer: AHRS sensor firmware
// Consumer: comm.Parser
