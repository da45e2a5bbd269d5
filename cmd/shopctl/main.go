package main

import (
	"context"
	"os"
	"os/signal"

	"FirstShop/internal/cli"
	"FirstShop/internal/config"
	"FirstShop/pkg/kit"
)

func main() {
	cfg := config.Load()
	log := kit.NewLogger("shopctl", getenv("SHOPCTL_LOG_LEVEL", "error"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := cli.NewRootCommand(cli.DefaultEnv(cfg, log)).ExecuteContext(ctx)
	stop()
	_ = log.Sync()

	os.Exit(cli.GetExitCode(err))
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
