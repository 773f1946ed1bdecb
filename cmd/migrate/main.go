package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"

	"github.com/intrpom/Kurzy-sub001/config"
	"github.com/intrpom/Kurzy-sub001/internal/logging"
	"github.com/intrpom/Kurzy-sub001/migrations"
	"github.com/intrpom/Kurzy-sub001/packages/database"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate [-config config.yaml] up|down|status|version")
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	config.MustLoad(*configPath)
	logger := logging.Setup(config.Conf.Log)

	if err := migrate(context.Background(), flag.Arg(0)); err != nil {
		logger.Error("migration failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func migrate(ctx context.Context, command string) error {
	c := config.Conf.Database
	db, err := database.InitPostgres(&database.PostgresConfig{
		ServiceName: logging.ServiceName,
		Username:    c.Username,
		Password:    c.Password,
		Host:        c.Host,
		Port:        c.Port,
		Database:    c.Database,
		SSLMode:     c.SSLMode,
		LogLevel:    c.LogLevel,
	})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.RunContext(ctx, command, sqlDB, ".")
}
