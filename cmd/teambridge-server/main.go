package main

import (
	"errors"
	"flag"
	"os"
	"time"

	"teambridge-backend/lib/configutil"
	"teambridge-backend/lib/serviceutil"
	"teambridge-backend/lib/sqliteutil"
	"teambridge-backend/lib/telemetry"
	"teambridge-backend/services/extractor"
	"teambridge-backend/services/gateway"
	"teambridge-backend/services/migration"
	migrationdb "teambridge-backend/services/migration/db"
	"teambridge-backend/services/sessions"
	sessiondb "teambridge-backend/services/sessions/db"

	"github.com/joho/godotenv"
)

var errMissingSecret = errors.New("signing_secret is not set in config.json5 or TEAMBRIDGE_SIGNING_SECRET")

type Config struct {
	Port          int              `json:"port"`
	Database      string           `json:"database"`
	SigningSecret string           `json:"signing_secret"`
	SweepInterval string           `json:"sweep_interval"`
	Extractor     extractor.Config `json:"extractor"`
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	_ = godotenv.Load()
	telemetry.InitSlog(*verbose)

	ctx := serviceutil.SignalContext()

	tele, err := telemetry.SetupFromEnv(ctx, "teambridge-server")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	defer tele.Shutdown(ctx)
	telemetry.InstrumentPerfStats(ctx)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.Database == "" {
		cfg.Database = "teambridge.db"
	}
	secret := cfg.SigningSecret
	if secret == "" {
		secret = os.Getenv("TEAMBRIDGE_SIGNING_SECRET")
	}
	if secret == "" {
		serviceutil.Fatal("read config", errMissingSecret)
	}
	if cfg.Extractor.ManusApiKey == "" {
		cfg.Extractor.ManusApiKey = os.Getenv("MANUS_API_KEY")
	}
	if cfg.Extractor.Kind == "" {
		cfg.Extractor.Kind = extractor.KindScraper
	}

	database, err := sqliteutil.OpenDB(sessiondb.Schema+"\n"+migrationdb.Schema, cfg.Database)
	if err != nil {
		serviceutil.Fatal("open database", err)
	}

	store := sessions.NewStore(database, []byte(secret))
	store.StartSweepDaemon(ctx, sweepInterval(cfg.SweepInterval))

	backend, err := extractor.New(cfg.Extractor, store)
	if err != nil {
		serviceutil.Fatal("init extraction backend", err)
	}
	engine := migration.NewEngine(database, backend, string(cfg.Extractor.Kind))

	router := gateway.New(backend, store, engine).Router()
	go serviceutil.StartHttpServer(cfg.Port, router)
	<-ctx.Done()
}

func sweepInterval(raw string) time.Duration {
	if raw == "" {
		return time.Hour
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		serviceutil.Fatal("parse sweep_interval", err)
	}
	return d
}
