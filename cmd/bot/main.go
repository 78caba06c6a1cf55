package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"github.com/SychoAN/Tafsir-Al-Quran-bot/internal/core"
	"github.com/SychoAN/Tafsir-Al-Quran-bot/pkg/logx"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfgPath := flag.String("config", "./config.yaml", "path to config file (yaml or json)")
	flag.Parse()

	boot := logx.NewConsole("info")

	app, err := core.NewApp(*cfgPath)
	if err != nil {
		boot.Error("startup failed", logx.String("config", *cfgPath), logx.Err(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		boot.Error("start failed", logx.Err(err))
		os.Exit(1)
	}
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)

	if err := app.Wait(ctx); err != nil && ctx.Err() == nil {
		boot.Error("runtime failure", logx.Err(err))
	}

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	stop()

	shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	app.Stop(shCtx)
}
