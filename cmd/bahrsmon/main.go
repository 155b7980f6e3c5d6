package main

import (
	"flag"
	"log"
	"os"

	"github.com/robotalks/bahrs.go/pkg/l0/msgs"
	"github.com/robotalks/bahrs.go/pkg/publish/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/bahrs/"
	device  = "+"
)

func init() {
	if val := os.Getenv("BAHRS_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&device, "id", device, "Device ID, + for all.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	conn, err := mqtt.NewConnFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	conn.SubMeta(device, func(device string, meta *mqtt.Meta) {
		if meta == nil {
			log.Printf("%s: gone", device)
			return
		}
		log.Printf("%s: protocol %d, %d Hz, %s", device, meta.Protocol, meta.SampleRate, meta.Encoding)
	})
	conn.SubNavData(device, func(device string, sample msgs.NavData) {
		log.Printf("%s: %s", device, sample)
	})
	if token := conn.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
