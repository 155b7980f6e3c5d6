package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"

	fx "github.com/robotalks/bahrs.go/pkg/framework"
	"github.com/robotalks/bahrs.go/pkg/l0/comm"
	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
)

// Topic suffixes under <prefix><device>/.
const (
	NavDataTopic = "navdata"
	MetaTopic    = "meta"
)

// DefaultConnectTimeout bounds the initial connection.
const DefaultConnectTimeout = 10 * time.Second

// Meta describes the published device. It's retained on the meta topic
// while the publisher is connected.
type Meta struct {
	Device     string   `json:"device"`
	Protocol   uint16   `json:"protocol"`
	SampleRate int      `json:"sample_rate"`
	Encoding   string   `json:"encoding"`
	Fields     []string `json:"fields"`
}

// NewMeta creates Meta for device.
func NewMeta(device string, sampleRate int) Meta {
	m := Meta{
		Device:     device,
		Protocol:   comm.ProtocolVersion,
		SampleRate: sampleRate,
		Encoding:   "google.protobuf.Struct",
	}
	for _, f := range msgs.Fields {
		m.Fields = append(m.Fields, f.String())
	}
	return m
}

// DeviceTopic returns the topic of a device, without TopicPrefix.
func DeviceTopic(device, suffix string) string {
	return device + "/" + suffix
}

// Publisher is a monitor sink publishing every sample.
type Publisher struct {
	Conn *Conn
	Meta Meta
	// ConnectTimeout overrides DefaultConnectTimeout when positive.
	ConnectTimeout time.Duration

	metaJSON []byte
}

// NewPublisher creates a Publisher. The meta topic is cleared by the
// broker if the connection is lost.
func NewPublisher(brokerURL string, meta Meta) (*Publisher, error) {
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MQTT URL %q: %w", brokerURL, err)
	}
	opts.SetBinaryWill(topicPrefix+DeviceTopic(meta.Device, MetaTopic), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("bahrs:" + meta.Device)
	}
	p := &Publisher{
		Conn:     NewConn(opts, topicPrefix),
		Meta:     meta,
		metaJSON: metaJSON,
	}
	p.Conn.OnConnect = func(*Conn) { p.publishMeta(p.metaJSON) }
	return p, nil
}

// HandleSamples implements monitor.Sink.
func (p *Publisher) HandleSamples(ctx context.Context, samples []msgs.NavData) error {
	topic := DeviceTopic(p.Meta.Device, NavDataTopic)
	for n := range samples {
		data, err := samples[n].Encode()
		if err != nil {
			return fmt.Errorf("encode sample %d: %w", samples[n].Seq, err)
		}
		p.Conn.Pub(topic, data)
	}
	return nil
}

// AddToLoop implements framework.LoopAdder.
func (p *Publisher) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(p)
}

// Run implements framework.Runnable. It keeps the connection until ctx
// is done and clears the meta topic before disconnecting.
func (p *Publisher) Run(ctx context.Context) error {
	timeout := p.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	token := p.Conn.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("MQTT connect: timed out after %v", timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT connect: %w", err)
	}
	<-ctx.Done()
	p.publishMeta(nil).WaitTimeout(time.Second)
	p.Conn.Close()
	return ctx.Err()
}

func (p *Publisher) publishMeta(data []byte) paho.Token {
	if glog.V(1) {
		glog.Infof("PUB meta %q", p.Conn.TopicPrefix+DeviceTopic(p.Meta.Device, MetaTopic))
	}
	return p.Conn.PubWith(DeviceTopic(p.Meta.Device, MetaTopic), data, 1, true)
}
