package main

import (
	"flag"

	"github.com/golang/glog"

	fx "github.com/robotalks/bahrs.go/pkg/framework"
	"github.com/robotalks/bahrs.go/pkg/l0/serial"
	"github.com/robotalks/bahrs.go/pkg/metrics"
	"github.com/robotalks/bahrs.go/pkg/monitor"
	"github.com/robotalks/bahrs.go/pkg/publish/mqtt"
	"github.com/robotalks/bahrs.go/pkg/session"
	"github.com/robotalks/bahrs.go/pkg/web"
)

func init() {
	session.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf, err := session.FromFlags()
	if err != nil {
		glog.Exitln(err)
	}
	if conf.Port == "" {
		glog.Exitln("-port is required")
	}

	opener := &serial.Opener{BaudRate: conf.BaudRate, ReadTimeout: conf.ReadTimeout}
	sess := session.New(conf, opener)
	mon := monitor.New(sess.Queue, conf.Retention).AddSink(monitor.LogSink{})
	collector := metrics.NewCollector(sess, mon)
	mon.AddSink(collector)

	loop := fx.NewLoop()
	loop.Interval = conf.DisplayInterval
	loop.Add(mon)
	loop.AddRunnable(sess)

	if conf.MQTTBrokerURL != "" {
		pub, err := mqtt.NewPublisher(conf.MQTTBrokerURL, mqtt.NewMeta(conf.DeviceID, conf.SampleRate))
		if err != nil {
			glog.Exitln(err)
		}
		mon.AddSink(pub)
		loop.Add(pub)
	}
	if conf.HTTPAddr != "" {
		srv := web.NewServer(conf.HTTPAddr, sess, mon, metrics.NewRegistry(collector))
		mon.AddSink(srv)
		loop.Add(srv)
	}

	runner := fx.NewRunner().HandleSignals().Go(loop)
	if err := runner.Wait(); err != nil {
		glog.Errorf("stopped: %v", err)
		glog.Flush()
		glog.Exitln(err)
	}
}
