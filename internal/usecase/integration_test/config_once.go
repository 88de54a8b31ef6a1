package integrationtest

import (
	"context"
	"os"
	"sync"

	"github.com/aakumar2208/tamil-movies-scraper/internal/config"
	infra_pg_init "github.com/aakumar2208/tamil-movies-scraper/internal/infra/postgres/init"
	"github.com/jmoiron/sqlx"
)

var (
	cfg     *config.Config
	cfgOnce sync.Once
)

func getConfig() *config.Config {
	cfgOnce.Do(func() {
		loaded, err := config.Load(os.Getenv("INTEGRATION_ENV_FILE"))
		if err != nil {
			panic(err)
		}
		cfg = loaded
	})
	return cfg
}

// freshDB connects to the configured database and empties the crawl tables.
func freshDB(ctx context.Context) *sqlx.DB {
	db := infra_pg_init.MustEstablishConn(getConfig().Postgres)
	if err := infra_pg_init.Migrate(ctx, db); err != nil {
		panic(err)
	}
	db.MustExecContext(ctx, `TRUNCATE reviews, movies CASCADE`)
	return db
}
