package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"time"

	"ssotica-backend/internal/components/telemetry"
	"ssotica-backend/internal/db"
	"ssotica-backend/internal/httpapi"
	"ssotica-backend/internal/scrapers/ssotica"
	"ssotica-backend/internal/service"
	"ssotica-backend/pkg/migrations"
	"ssotica-backend/pkg/serviceutil"
)

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	configPath := flag.String("config", "config.json5", "The config file to read.")
	dumpHttp := flag.String("dump-http", "", "Write every request made to SSÓtica into this directory.")
	flag.Parse()

	ctx := serviceutil.SignalContext()
	tel := InitTelemetry(ctx, *verbose)

	cfg, err := ReadConfig(*configPath)
	if err != nil {
		serviceutil.Fatal("read config", err)
	}

	var output telemetry.MessageOutput
	if *dumpHttp != "" {
		fsOutput, err := telemetry.NewFilesystemOutput(*dumpHttp)
		if err != nil {
			serviceutil.Fatal("create http dump directory", err)
		}
		output = fsOutput
	}

	opts, err := cfg.Ssotica.Options(output)
	if err != nil {
		serviceutil.Fatal("ssotica config", err)
	}
	client, err := ssotica.NewClient(opts, tel)
	if err != nil {
		serviceutil.Fatal("create ssotica client", err)
	}

	options := []service.Option{
		service.WithTelemetry(tel),
		service.WithCache(cfg.Cache.Size, cfg.CacheTTL()),
	}
	if cfg.SearchLogEnabled() {
		database, err := migrations.OpenAndMigrateDB(db.Schema, cfg.Database)
		if err != nil {
			serviceutil.Fatal("open search log", err)
		}
		defer database.Close()
		options = append(options, service.WithSearchLog(db.New(database)))
	}

	installments, err := service.NewInstallmentService(client, options...)
	if err != nil {
		serviceutil.Fatal("create installment service", err)
	}
	if cfg.SearchLogEnabled() {
		go pruneSearchLogDaemon(ctx, installments, cfg.Retention())
	}

	server := httpapi.NewServer(installments, tel, cfg.RequestTimeout())
	err = serviceutil.StartHttpServer(ctx, net.JoinHostPort("", cfg.Port), server.Routes())
	if err != nil {
		serviceutil.Fatal("http server", err)
	}
}

func pruneSearchLogDaemon(ctx context.Context, installments *service.InstallmentService, retention time.Duration) {
	slog.InfoContext(ctx, "start daemon", "task", "prune search log every 6 hours", "retention", retention.String())

	ticker := time.NewTicker(time.Hour * 6)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			err := installments.PruneSearchLog(ctx, retention)
			if err != nil {
				slog.WarnContext(ctx, "failed to prune search log", "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}
