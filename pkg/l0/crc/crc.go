// Package crc implements the word-wise CRC-32 used by the sensor link.
//
// The sensor computes its checksum with a hardware CRC unit which consumes
// 32-bit little-endian words and shifts them MSB first through polynomial
// 0x04C11DB7, starting from all-ones and with no final XOR. This is not the
// reflected IEEE CRC from hash/crc32, so it's implemented here.
package crc

import (
	"encoding/binary"
	"hash"
)

const (
	// Polynomial is the (non-reflected) CRC-32 polynomial.
	Polynomial uint32 = 0x04C11DB7
	// Init is the initial accumulator value.
	Init uint32 = 0xFFFFFFFF
	// Size is the size of the checksum in bytes.
	Size = 4
	// WordSize is the number of bytes consumed per step.
	WordSize = 4
)

// Update feeds whole words from p into crc. Trailing bytes which don't
// complete a word are ignored.
func Update(crc uint32, p []byte) uint32 {
	for len(p) >= WordSize {
		crc = updateWord(crc, binary.LittleEndian.Uint32(p))
		p = p[WordSize:]
	}
	return crc
}

func updateWord(crc, word uint32) uint32 {
	crc ^= word
	for i := 0; i < 32; i++ {
		if crc&0x80000000 != 0 {
			crc = (crc << 1) ^ Polynomial
		} else {
			crc <<= 1
		}
	}
	return crc
}

// Checksum computes the checksum of p.
func Checksum(p []byte) uint32 {
	return Update(Init, p)
}

// Verify checks the trailing 4 bytes (little-endian) of frame against the
// checksum of the bytes before them.
func Verify(frame []byte) bool {
	if len(frame) < Size {
		return false
	}
	body, sum := frame[:len(frame)-Size], frame[len(frame)-Size:]
	return Checksum(body) == binary.LittleEndian.Uint32(sum)
}

// Append appends the little-endian checksum of p to p.
func Append(p []byte) []byte {
	var sum [Size]byte
	binary.LittleEndian.PutUint32(sum[:], Checksum(p))
	return append(p, sum[:]...)
}

// digest implements hash.Hash32. Partial words are kept until completed
// by a later Write, and never enter the sum otherwise.
type digest struct {
	crc     uint32
	pending [WordSize]byte
	npend   int
}

// New creates a hash.Hash32 computing the same checksum as Checksum.
func New() hash.Hash32 {
	return &digest{crc: Init}
}

func (d *digest) Size() int      { return Size }
func (d *digest) BlockSize() int { return WordSize }

func (d *digest) Reset() {
	d.crc, d.npend = Init, 0
}

func (d *digest) Write(p []byte) (int, error) {
	n := len(p)
	if d.npend > 0 {
		c := copy(d.pending[d.npend:], p)
		d.npend += c
		p = p[c:]
		if d.npend < WordSize {
			return n, nil
		}
		d.crc = Update(d.crc, d.pending[:])
		d.npend = 0
	}
	full := len(p) &^ (WordSize - 1)
	d.crc = Update(d.crc, p[:full])
	d.npend = copy(d.pending[:], p[full:])
	return n, nil
}

func (d *digest) Sum32() uint32 { return d.crc }

func (d *digest) Sum(in []byte) []byte {
	s := d.Sum32()
	return append(in, byte(s>>24), byte(s>>16), byte(s>>8), byte(s))
}
