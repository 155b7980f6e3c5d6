package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	conf := NewConfig()
	require.Equal(t, 115200, conf.BaudRate)
	require.Equal(t, 100, conf.SampleRate)
	require.Equal(t, 30*time.Second, conf.Retention)
	require.Equal(t, 200*time.Millisecond, conf.DisplayInterval)
	require.Equal(t, 3000, conf.QueueCapacity())
	require.NotEmpty(t, conf.DeviceID)
	require.NoError(t, conf.Validate())

	conf.Port = "changed"
	require.NotEqual(t, "changed", Default().Port)
}

func TestConfigLoad(t *testing.T) {
	conf := NewConfig()
	require.NoError(t, conf.Load([]byte(`
port: /dev/ttyACM0
sample_rate: 50
retention: 10s
display_interval: 100ms
mqtt_url: mqtt://broker:1883/bahrs/
`)))
	require.Equal(t, "/dev/ttyACM0", conf.Port)
	require.Equal(t, 50, conf.SampleRate)
	require.Equal(t, 10*time.Second, conf.Retention)
	require.Equal(t, 100*time.Millisecond, conf.DisplayInterval)
	require.Equal(t, "mqtt://broker:1883/bahrs/", conf.MQTTBrokerURL)
	require.Equal(t, 115200, conf.BaudRate)
	require.Equal(t, 500, conf.QueueCapacity())
}

func TestConfigLoadInvalid(t *testing.T) {
	require.Error(t, NewConfig().Load([]byte("sample_rate: 0")))
	require.Error(t, NewConfig().Load([]byte("retention: forever")))
	require.Error(t, NewConfig().Load([]byte("port: [")))
}

func TestLoadConfigFile(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "bahrs.yaml")
	require.NoError(t, os.WriteFile(fn, []byte("baud_rate: 57600\n"), 0644))
	conf, err := LoadConfigFile(fn)
	require.NoError(t, err)
	require.Equal(t, 57600, conf.BaudRate)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestFromFlagsValidates(t *testing.T) {
	saved, savedFile := defaultConfig, configFile
	defer func() {
		defaultConfig, configFile = saved, savedFile
	}()
	configFile = ""

	conf, err := FromFlags()
	require.NoError(t, err)
	require.Equal(t, saved.BaudRate, conf.BaudRate)

	defaultConfig.DisplayInterval = 0
	_, err = FromFlags()
	require.Error(t, err)
	require.Contains(t, err.Error(), "display interval")

	defaultConfig = saved
	defaultConfig.BaudRate = 0
	_, err = FromFlags()
	require.Error(t, err)
	require.Contains(t, err.Error(), "baud rate")
}
