package mqtt

import (
	"encoding/json"
	"strings"

	"github.com/golang/glog"

	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
)

// NavDataHandler receives samples published by a device.
type NavDataHandler func(device string, sample msgs.NavData)

// MetaHandler receives device meta. meta is nil when the device is gone.
type MetaHandler func(device string, meta *Meta)

// SubNavData subscribes samples of device, "+" for all devices.
// Undecodable payloads are logged and dropped.
func (c *Conn) SubNavData(device string, handler NavDataHandler) *Subscription {
	return c.Sub(DeviceTopic(device, NavDataTopic), func(topic string, payload []byte) {
		sample, err := msgs.DecodeNavDataProto(payload)
		if err != nil {
			glog.Warningf("drop invalid sample on %q: %v", topic, err)
			return
		}
		handler(deviceOf(topic), sample)
	})
}

// SubMeta subscribes meta of device, "+" for all devices.
func (c *Conn) SubMeta(device string, handler MetaHandler) *Subscription {
	return c.Sub(DeviceTopic(device, MetaTopic), func(topic string, payload []byte) {
		if len(payload) == 0 {
			handler(deviceOf(topic), nil)
			return
		}
		var meta Meta
		if err := json.Unmarshal(payload, &meta); err != nil {
			glog.Warningf("drop invalid meta on %q: %v", topic, err)
			return
		}
		handler(deviceOf(topic), &meta)
	})
}

func deviceOf(topic string) string {
	if pos := strings.LastIndex(topic, "/"); pos >= 0 {
		return topic[:pos]
	}
	return topic
}
