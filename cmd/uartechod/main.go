package main

import (
	"flag"

	"github.com/golang/glog"

	fx "github.com/robotalks/uartecho/pkg/framework"
	"github.com/robotalks/uartecho/pkg/l1/env"
)

//go-build: CGO_ENABLED=0

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	host := env.NewConfig().MustNewHost()
	defer host.Close()
	if err := fx.NewRunner().HandleSignals().Go(host.Runnables()...).Wait(); err != nil {
		glog.Error(err)
	}
}
