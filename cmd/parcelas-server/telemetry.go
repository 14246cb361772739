package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"ssotica-backend/internal/components/telemetry"
	"ssotica-backend/pkg/serviceutil"
)

// InitTelemetry sets up logging and, when a telemetry.json5 is found, otlp
// export. The returned API reports to both.
func InitTelemetry(ctx context.Context, verbose bool) telemetry.API {
	telemetry.InitSlog(verbose)
	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	var tel telemetry.API = telemetry.SlogAPI{}

	otel, err := telemetry.SetupFromEnv(ctx, "parcelas-server")
	if errors.Is(err, os.ErrNotExist) {
		slog.InfoContext(ctx, "telemetry.json5 not found, otlp export disabled")
		return tel
	}
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		err := otel.Shutdown(context.Background())
		if err != nil {
			slog.Warn("shutdown telemetry", "err", err)
		}
	}()
	telemetry.InstrumentPerfStats(ctx)

	otelApi, err := telemetry.NewOtelAPI("parcelas-server", tel)
	if err != nil {
		serviceutil.Fatal("setup otel reports", err)
	}
	return otelApi
}
