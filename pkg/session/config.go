package session

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/bahrs.go/pkg/env"
	"github.com/robotalks/bahrs.go/pkg/queue"
)

// Defaults of the link.
const (
	DefaultBaudRate        = 115200
	DefaultReadTimeout     = 100 * time.Millisecond
	DefaultPollInterval    = 10 * time.Millisecond
	DefaultSampleRate      = 100
	DefaultRetention       = 30 * time.Second
	DefaultDisplayInterval = 200 * time.Millisecond
)

// Config defines the configurations of a session and the components
// consuming it.
type Config struct {
	// Port is the serial device, e.g. /dev/ttyUSB0.
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
	// ReadTimeout bounds a single blocking read on the port.
	ReadTimeout time.Duration `yaml:"read_timeout"`
	// PollInterval is the pause after a read returns no data.
	PollInterval time.Duration `yaml:"poll_interval"`
	// SampleRate is the expected sample rate in Hz.
	SampleRate int `yaml:"sample_rate"`
	// Retention is how long samples are kept by consumers.
	// The delivery queue holds SampleRate x Retention samples.
	Retention time.Duration `yaml:"retention"`
	// DisplayInterval is the period of the consumer loop.
	DisplayInterval time.Duration `yaml:"display_interval"`

	// MQTTBrokerURL specifies the MQTT broker to publish samples.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `yaml:"mqtt_url"`
	// HTTPAddr is the listen address of the live feed.
	HTTPAddr string `yaml:"http_addr"`
	// DeviceID identifies this link in published topics.
	DeviceID string `yaml:"device_id"`
}

var defaultConfig = Config{
	BaudRate:        DefaultBaudRate,
	ReadTimeout:     DefaultReadTimeout,
	PollInterval:    DefaultPollInterval,
	SampleRate:      DefaultSampleRate,
	Retention:       DefaultRetention,
	DisplayInterval: DefaultDisplayInterval,
}

var configFile string

func init() {
	if val := os.Getenv("BAHRS_PORT"); val != "" {
		defaultConfig.Port = val
	}
	if val := os.Getenv("BAHRS_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("BAHRS_HTTP_ADDR"); val != "" {
		defaultConfig.HTTPAddr = val
	}
	defaultConfig.DeviceID = env.MachineID()
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&configFile, "config", configFile, "YAML config file, explicit flags take precedence.")
	flag.StringVar(&defaultConfig.Port, "port", defaultConfig.Port, "Serial port of the AHRS.")
	flag.IntVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Serial baud rate.")
	flag.DurationVar(&defaultConfig.ReadTimeout, "read-timeout", defaultConfig.ReadTimeout, "Serial read timeout.")
	flag.DurationVar(&defaultConfig.PollInterval, "poll", defaultConfig.PollInterval, "Pause when no data is available.")
	flag.IntVar(&defaultConfig.SampleRate, "rate", defaultConfig.SampleRate, "Expected sample rate in Hz.")
	flag.DurationVar(&defaultConfig.Retention, "window", defaultConfig.Retention, "Retention window of samples.")
	flag.DurationVar(&defaultConfig.DisplayInterval, "interval", defaultConfig.DisplayInterval, "Consumer interval.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, empty to disable.")
	flag.StringVar(&defaultConfig.HTTPAddr, "http", defaultConfig.HTTPAddr, "Live feed listen address, empty to disable.")
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID used in topics.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// FromFlags creates a Config after flag.Parse.
// The file given by -config overrides defaults, flags set explicitly
// override the file.
func FromFlags() (*Config, error) {
	if configFile != "" {
		if err := loadFileUnderFlags(configFile); err != nil {
			return nil, err
		}
	}
	conf := NewConfig()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func loadFileUnderFlags(fn string) error {
	explicit := make(map[string]string)
	flag.Visit(func(f *flag.Flag) {
		explicit[f.Name] = f.Value.String()
	})
	if err := defaultConfig.LoadFile(fn); err != nil {
		return err
	}
	for name, val := range explicit {
		if err := flag.Set(name, val); err != nil {
			return err
		}
	}
	return nil
}

// LoadConfigFile creates a Config with defaults overridden by a YAML file.
func LoadConfigFile(fn string) (*Config, error) {
	conf := NewConfig()
	if err := conf.LoadFile(fn); err != nil {
		return nil, err
	}
	return conf, nil
}

// LoadFile overrides fields present in a YAML file.
func (c *Config) LoadFile(fn string) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return fmt.Errorf("read config %s: %w", fn, err)
	}
	return c.Load(data)
}

// Load overrides fields present in YAML data.
// Durations are written as strings like "200ms".
func (c *Config) Load(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return c.Validate()
}

// Validate checks the values are usable.
func (c *Config) Validate() error {
	switch {
	case c.BaudRate <= 0:
		return fmt.Errorf("invalid baud rate %d", c.BaudRate)
	case c.SampleRate <= 0:
		return fmt.Errorf("invalid sample rate %d", c.SampleRate)
	case c.Retention <= 0:
		return fmt.Errorf("invalid retention %v", c.Retention)
	case c.DisplayInterval <= 0:
		return fmt.Errorf("invalid display interval %v", c.DisplayInterval)
	}
	return nil
}

// QueueCapacity is the number of samples the delivery queue holds.
func (c *Config) QueueCapacity() int {
	return queue.CapacityFor(c.SampleRate, c.Retention)
}
