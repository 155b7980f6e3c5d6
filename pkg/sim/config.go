package sim

import (
	"flag"
	"time"
)

// Config defines the simulated sensor.
type Config struct {
	// Rate is the frame rate in Hz.
	Rate int
	// BaseHeight is the mean height in m.
	BaseHeight float64
	// Amplitude of the height oscillation in m.
	Amplitude float64
	// Period of the height, roll and pitch oscillations.
	Period time.Duration
	// Tilt is the roll/pitch amplitude in degrees.
	Tilt float64
	// YawRate in degrees/s.
	YawRate float64
	// NoiseRatio is the probability of noise bytes before a frame.
	NoiseRatio float64
	// CorruptRatio is the probability of a corrupted frame.
	CorruptRatio float64
	Seed         int64
}

// Defaults
const (
	DefaultRate       = 100
	DefaultBaseHeight = 100.0
	DefaultAmplitude  = 5.0
	DefaultPeriod     = 10 * time.Second
	DefaultTilt       = 10.0
	DefaultYawRate    = 15.0
)

var defaultConfig = Config{
	Rate:       DefaultRate,
	BaseHeight: DefaultBaseHeight,
	Amplitude:  DefaultAmplitude,
	Period:     DefaultPeriod,
	Tilt:       DefaultTilt,
	YawRate:    DefaultYawRate,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.Rate, "rate", defaultConfig.Rate, "Frame rate in Hz.")
	flag.Float64Var(&defaultConfig.BaseHeight, "height", defaultConfig.BaseHeight, "Mean height (m).")
	flag.Float64Var(&defaultConfig.Amplitude, "amplitude", defaultConfig.Amplitude, "Height oscillation (m).")
	flag.DurationVar(&defaultConfig.Period, "period", defaultConfig.Period, "Oscillation period.")
	flag.Float64Var(&defaultConfig.Tilt, "tilt", defaultConfig.Tilt, "Roll/pitch amplitude (degrees).")
	flag.Float64Var(&defaultConfig.YawRate, "yaw-rate", defaultConfig.YawRate, "Yaw rate (degrees/s).")
	flag.Float64Var(&defaultConfig.NoiseRatio, "noise", defaultConfig.NoiseRatio, "Probability of noise before a frame.")
	flag.Float64Var(&defaultConfig.CorruptRatio, "corrupt", defaultConfig.CorruptRatio, "Probability of a corrupted frame.")
	flag.Int64Var(&defaultConfig.Seed, "seed", defaultConfig.Seed, "Random seed, 0 to use the clock.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewGenerator creates a Generator using the config.
func (c *Config) NewGenerator() *Generator {
	return NewGenerator(*c)
}
