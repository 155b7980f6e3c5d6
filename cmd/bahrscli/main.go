package main

import (
	"github.com/robotalks/bahrs.go/pkg/cli/sh"
	"github.com/robotalks/bahrs.go/pkg/session"
)

//go-build: CGO_ENABLED=0

func init() {
	session.SetupFlags()
}

func main() {
	sh.Main()
}
