// migrate aplica las migraciones SQL embebidas contra la base configurada.
//
// Uso: go run ./cmd/migrate
// Lee la configuración de entorno (DATABASE_URL o DB_HOST/DB_PORT/...).
package main

import (
	"context"
	"time"

	"github.com/jhoicas/stock-quants/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-quants/pkg/config"
	"github.com/jhoicas/stock-quants/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("aplicar migraciones")
	}
	log.Info().Msg("migraciones aplicadas")
}
