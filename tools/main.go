package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rashmi2733/nepal-temperature-changes/internal/config"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/db"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/logging"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/loader"
	"github.com/Rashmi2733/nepal-temperature-changes/internal/modules/climate/repository"
	"github.com/Rashmi2733/nepal-temperature-changes/tools/migrate"
)

const usage = `usage: %s <command>
  migrate        apply pending schema migrations
  status         list migrations and whether they are applied
  import <csv>   upsert a year,month,monthly_temperature_C file into the store
`

var errUsage = errors.New("usage")

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewWithWriter(os.Stderr, cfg, "dev")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, usage, os.Args[0])
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	switch args[0] {
	case "migrate", "status":
	case "import":
		if len(args) != 2 {
			return fmt.Errorf("%w: import needs exactly one csv path", errUsage)
		}
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	conn, err := db.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(conn); closeErr != nil {
			logger.Error("db close", "err", closeErr)
		}
	}()

	switch args[0] {
	case "migrate":
		applied, err := migrate.Run(ctx, conn)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Fprintf(out, "migrations applied: %d\n", len(applied))
		for _, v := range applied {
			fmt.Fprintf(out, "  %s\n", v)
		}
	case "status":
		migrations, err := migrate.Status(ctx, conn)
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		for _, m := range migrations {
			state := "pending"
			if m.Applied {
				state = "applied"
			}
			fmt.Fprintf(out, "%s_%s\t%s\n", m.Version, m.Name, state)
		}
	case "import":
		return importCSV(ctx, conn, args[1], out)
	}
	return nil
}

func importCSV(ctx context.Context, conn *sql.DB, path string, out io.Writer) error {
	if _, err := migrate.Run(ctx, conn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	table, err := loader.LoadFile(path)
	if err != nil {
		return err
	}
	n, err := repository.NewRepository(conn).Import(ctx, table)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Fprintf(out, "imported %d records from %s\n", n, path)
	return nil
}
