package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/switchcollectorpro/switchcollectorpro/pkg/logger"
	"github.com/switchcollectorpro/switchcollectorpro/simulate"
)

// 独立运行模拟交换机，便于手工 telnet 调试
func main() {
	path := flag.String("config", "simulate/simulate.yaml", "模拟器配置文件")
	listen := flag.String("listen", "", "覆盖监听地址")
	flag.Parse()

	_ = logger.Init(logger.Config{Level: "debug", Output: "console"})

	cfg, err := simulate.LoadConfig(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load simulate config: %v\n", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	srv, err := simulate.Start(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start simulator: %v\n", err)
		os.Exit(1)
	}
	defer srv.Stop()
	logger.Infof("simulated %s listening on %s (user %s)", cfg.Sysname, srv.Addr(), cfg.Username)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
