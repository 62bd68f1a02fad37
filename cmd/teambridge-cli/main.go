package main

import (
	"context"
	"log/slog"

	"teambridge-backend/cmd/teambridge-cli/commands"
	"teambridge-backend/lib/telemetry"
)

func main() {
	ctx := context.Background()
	telemetry.InitSlog(false)

	// missing telemetry config is fine for the cli, it just runs
	// without instrumentation
	tele, err := telemetry.SetupFromEnv(ctx, "teambridge-cli")
	if err != nil {
		slog.Debug("telemetry disabled", "err", err)
	} else {
		defer tele.Shutdown(ctx)
	}

	commands.ExecuteContext(ctx)
}
