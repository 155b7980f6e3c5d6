// Package sim generates a synthetic AHRS byte stream.
package sim

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bahrs.go/pkg/l0/comm"
	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
)

// MaxNoise is the maximum number of noise bytes inserted before a frame.
const MaxNoise = 8

// Stats counts what a Generator produced.
type Stats struct {
	Frames     uint64
	Corrupted  uint64
	NoiseBytes uint64
}

// Generator produces frames of a sensor oscillating around BaseHeight
// while turning at YawRate.
type Generator struct {
	Config

	rand  *rand.Rand
	seq   uint8
	stats Stats
}

// NewGenerator creates a Generator.
func NewGenerator(conf Config) *Generator {
	seed := conf.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if conf.Rate <= 0 {
		conf.Rate = DefaultRate
	}
	if conf.Period <= 0 {
		conf.Period = DefaultPeriod
	}
	return &Generator{Config: conf, rand: rand.New(rand.NewSource(seed))}
}

// Stats returns the counters.
func (g *Generator) Stats() Stats {
	return g.stats
}

// Sample returns the raw fields at elapsed time since start and advances
// the sequence number.
func (g *Generator) Sample(elapsed time.Duration) msgs.RawNavData {
	phase := 2 * math.Pi * elapsed.Seconds() / g.Period.Seconds()
	omega := 2 * math.Pi / g.Period.Seconds()
	tilt := AngleFromDegrees(g.Tilt).Radians()
	yaw := AngleFromDegrees(0).AddDegrees(g.YawRate * elapsed.Seconds())
	r := msgs.RawNavData{
		Seq:              g.seq,
		Height:           msgs.RawHeight(g.BaseHeight + g.Amplitude*math.Sin(phase)),
		VerticalVelocity: msgs.RawVerticalVelocity(g.Amplitude * omega * math.Cos(phase)),
		Roll:             msgs.RawAngle(tilt * math.Sin(phase)),
		Pitch:            msgs.RawAngle(tilt * math.Cos(phase)),
		Yaw:              msgs.RawAngle(yaw.Radians()),
		Validity:         msgs.ValidAll,
	}
	g.seq++
	return r
}

// Next returns the bytes of the next frame, possibly preceded by noise or
// corrupted as configured.
func (g *Generator) Next(elapsed time.Duration) []byte {
	var out []byte
	if g.NoiseRatio > 0 && g.rand.Float64() < g.NoiseRatio {
		out = g.noise(1 + g.rand.Intn(MaxNoise))
	}
	frame := comm.EncodeNavData(g.Sample(elapsed))
	if g.CorruptRatio > 0 && g.rand.Float64() < g.CorruptRatio {
		// the header stays intact so the frame is rejected by checksum.
		pos := comm.HeaderSize + g.rand.Intn(comm.FrameSize-comm.HeaderSize-comm.ChecksumSize)
		frame[pos] ^= byte(1 + g.rand.Intn(255))
		g.stats.Corrupted++
	}
	g.stats.Frames++
	return append(out, frame...)
}

// noise never contains the first sync byte, so it can't form a marker.
func (g *Generator) noise(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		for {
			b[i] = byte(g.rand.Intn(256))
			if b[i] != comm.SyncMarker0 {
				break
			}
		}
	}
	g.stats.NoiseBytes += uint64(n)
	return b
}

// Run writes frames at Rate until ctx is done.
func (g *Generator) Run(ctx context.Context, w io.Writer) error {
	ticker := time.NewTicker(time.Second / time.Duration(g.Rate))
	defer ticker.Stop()
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			glog.Infof("simulator stopped: %+v", g.stats)
			return ctx.Err()
		case now := <-ticker.C:
			if _, err := w.Write(g.Next(now.Sub(start))); err != nil {
				return fmt.Errorf("write frame: %w", err)
			}
		}
	}
}
