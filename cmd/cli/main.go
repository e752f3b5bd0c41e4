package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/switchcollectorpro/switchcollectorpro/internal/config"
	"github.com/switchcollectorpro/switchcollectorpro/internal/service"
	"github.com/switchcollectorpro/switchcollectorpro/pkg/logger"

	_ "github.com/switchcollectorpro/switchcollectorpro/addone/collect/platforms/h3c_s"
	_ "github.com/switchcollectorpro/switchcollectorpro/addone/collect/platforms/hp_v1910"
	_ "github.com/switchcollectorpro/switchcollectorpro/addone/interact/platforms/h3c_s"
	_ "github.com/switchcollectorpro/switchcollectorpro/addone/interact/platforms/hp_v1910"
)

// 单次采集：按配置登录交换机，采集一轮并输出对外快照 JSON
func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	host := flag.String("host", "", "覆盖 switch.host")
	port := flag.Int("port", 0, "覆盖 switch.port")
	testOnly := flag.Bool("test", false, "仅测试登录")
	timeout := flag.Duration("timeout", 2*time.Minute, "整轮采集超时")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	// stdout 只输出 JSON
	if cfg.Log.Output != "file" {
		cfg.Log.Output = "stderr"
	}
	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	if *host != "" {
		cfg.Switch.Host = *host
	}
	if *port > 0 {
		cfg.Switch.Port = *port
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	poller := service.NewPollerService(cfg)
	if *testOnly {
		if err := poller.TestConnection(ctx, nil); err != nil {
			fail(err)
		}
		fmt.Println("login ok")
		return
	}

	out, err := poller.PollNow(ctx)
	if err != nil {
		fail(err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		os.Exit(1)
	}
}

func fail(err error) {
	if pe, ok := service.AsPollError(err); ok {
		fmt.Fprintf(os.Stderr, "%s: %v\n", pe.Kind, pe.Err)
		// 连接与认证失败为终止性错误，退出码区分
		if pe.Terminal() {
			os.Exit(2)
		}
	} else {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}
