package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"netcube/client"
	"netcube/config"
	"netcube/logging"
	"netcube/server"
)

// netcube 入口：-mode server 启动权威服务端，-mode client 启动带预测的终端客户端
func main() {
	var (
		mode       string
		configPath string
		addr       string
		serverURL  string
		bot        bool
		initConfig bool
	)
	flag.StringVar(&mode, "mode", "server", "server | client")
	flag.StringVar(&configPath, "config", "config.toml", "path to config file")
	flag.StringVar(&addr, "addr", "", "server listen address, overrides config, e.g. :7979")
	flag.StringVar(&serverURL, "url", "", "client: server websocket url, overrides config")
	flag.BoolVar(&bot, "bot", false, "client: drive input from a scripted pattern instead of the keyboard")
	flag.BoolVar(&initConfig, "init-config", false, "write a default config file and exit")
	flag.Parse()

	if initConfig {
		if err := config.SaveDefault(configPath); err != nil {
			panic(err)
		}
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if serverURL != "" {
		cfg.Client.URL = serverURL
	}
	if bot {
		cfg.Client.Bot = true
	}

	switch mode {
	case "server":
		runServer(cfg.Server)
	case "client":
		runClient(cfg.Client)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func initSentry(dsn string) {
	if dsn == "" {
		return
	}
	if err := sentry.Init(sentry.ClientOptions{Dsn: dsn}); err != nil {
		logging.Log.Warnf("sentry init: %v", err)
	}
}

func runServer(cfg config.Server) {
	if err := logging.InitLogger(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel}); err != nil {
		panic(err)
	}
	defer logging.SyncLogger()
	initSentry(cfg.SentryDSN)
	defer sentry.Flush(2 * time.Second)

	if cfg.StatsviewAddr != "" {
		viewer.SetConfiguration(viewer.WithAddr(cfg.StatsviewAddr))
		mgr := statsview.New()
		go mgr.Start()
	}

	wm := server.NewWorldManager(server.OptionsFromConfig(cfg))
	// 先预创建默认世界，便于快速试跑
	_ = wm.GetOrCreateWorld(server.DefaultWorldID)

	mux := http.NewServeMux()
	wm.Routes(mux)
	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		logging.Log.Infof("netcube listening on %s (tick_rate=%d move_rate=%.2f)", cfg.Addr, cfg.TickRate, cfg.MoveRate)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Log.Info("Shutting down...")
	wm.StopAll()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

func runClient(cfg config.Client) {
	if err := logging.InitLogger(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel}); err != nil {
		panic(err)
	}
	defer logging.SyncLogger()
	initSentry(cfg.SentryDSN)
	defer sentry.Flush(2 * time.Second)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var (
		input  client.InputSource
		onTick func(c *client.Client)
	)
	if cfg.Bot {
		input = client.BotPattern()
		onTick = func(c *client.Client) {
			if c.Clock().PredictingTick()%60 == 0 {
				logging.Log.Info(c.Status())
			}
		}
	} else {
		term, err := client.NewTerminal(cancel)
		if err != nil {
			logging.Log.Fatalf("terminal: %v", err)
		}
		defer term.Close()
		input = term
		onTick = func(c *client.Client) { term.Render(c.Status()) }
	}

	c := client.New(client.OptionsFromConfig(cfg), input)
	conn, err := c.Dial(ctx, cfg.URL, cfg.Room)
	if err != nil {
		logging.Log.Errorf("dial: %v", err)
		return
	}
	if err := c.Run(ctx, conn, onTick); err != nil && err != context.Canceled {
		logging.Log.Errorf("client stopped: %v", err)
	}
}
