package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/golang/glog"

	fx "github.com/robotalks/bahrs.go/pkg/framework"
	"github.com/robotalks/bahrs.go/pkg/l0/serial"
	"github.com/robotalks/bahrs.go/pkg/session"
	"github.com/robotalks/bahrs.go/pkg/sim"
)

var (
	port     string
	baudRate = session.DefaultBaudRate
)

func init() {
	flag.StringVar(&port, "port", port, "Serial port to write frames, stdout if empty.")
	flag.IntVar(&baudRate, "baud", baudRate, "Serial baud rate.")
	sim.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	var out io.WriteCloser = os.Stdout
	if port != "" {
		w, err := (&serial.Opener{BaudRate: baudRate}).OpenWriter(port)
		if err != nil {
			glog.Exitln(err)
		}
		out = w
	}
	gen := sim.NewConfig().NewGenerator()
	runner := fx.NewRunner().HandleSignals().Go(fx.RunFunc(func(ctx context.Context) error {
		return fx.RunWithContextCloser(ctx, out, func() error {
			return gen.Run(ctx, out)
		})
	}))
	if err := runner.Wait(); err != nil {
		glog.Exitln(err)
	}
}
