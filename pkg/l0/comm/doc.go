// Package comm provides L0 protocol support.
package comm

// L0 protocol is streamed by the AHRS sensor over a serial link as fixed
// size frames:
//
//	0-1    sync marker 0x4E 0x45
//	2-3    protocol version (uint16, little-endian)
//	4      message type
//	5-18   payload (NavData for type 0x02)
//	19     padding
//	20-23  CRC-32 over bytes 0-19 (see package crc)
//
// There's no length field, so the stream is synchronized by hunting for the
// sync marker one byte at a time and validating a whole window with the
// checksum. Corrupted or unknown frames are discarded silently and only show
// up in Stats.
//
// Producer: AHRS sensor firmware
// Consumer: L1 controller (this host)
