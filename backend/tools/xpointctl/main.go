package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	libdb "xpointconnect/backend/libs/db"
	"xpointconnect/backend/libs/logging"
	"xpointconnect/backend/libs/password"
)

// Globals are flags shared by every command.
type Globals struct {
	DatabaseURL string `name:"database-url" env:"DATABASE_URL" required:"" help:"Postgres connection string."`
}

type cli struct {
	Globals

	Migrate migrateCmd `cmd:"" help:"Apply, roll back or inspect schema migrations."`
	Seed    seedCmd    `cmd:"" help:"Create the default staff accounts and sample charging stations."`
}

type migrateCmd struct {
	Command string `arg:"" enum:"up,down,status" default:"up" help:"Migration command (up, down, status)."`
}

func (c *migrateCmd) Run(ctx context.Context, g *Globals, logger *zap.Logger) error {
	db, err := libdb.Open(ctx, libdb.Config{DSN: g.DatabaseURL})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := libdb.Migrate(ctx, db.DB, c.Command); err != nil {
		return err
	}
	logger.Info("migrations finished", zap.String("command", c.Command))
	return nil
}

type seedCmd struct {
	AdminPassword    string `name:"admin-password" env:"SEED_ADMIN_PASSWORD" default:"Admin123!" help:"Password for the default back-office account."`
	OperatorPassword string `name:"operator-password" env:"SEED_OPERATOR_PASSWORD" default:"Operator123!" help:"Password for the default station operator."`
	BcryptCost       int    `name:"bcrypt-cost" default:"0" help:"bcrypt cost; 0 selects the library default."`
}

func (c *seedCmd) Run(ctx context.Context, g *Globals, logger *zap.Logger) error {
	db, err := libdb.Open(ctx, libdb.Config{DSN: g.DatabaseURL})
	if err != nil {
		return err
	}
	defer db.Close()

	seeder := NewSeeder(db, password.NewBcryptHasher(c.BcryptCost), logger)
	res, err := seeder.Seed(ctx, DefaultUsers(c.AdminPassword, c.OperatorPassword), SampleStations())
	if err != nil {
		return err
	}
	logger.Info("seeding finished",
		zap.Int("users_created", res.UsersCreated),
		zap.Int("stations_created", res.StationsCreated),
	)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logging.NewCLILogger("xpointctl")
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // best-effort flush

	var c cli
	kctx := kong.Parse(&c,
		kong.Name("xpointctl"),
		kong.Description("Operational tooling for the XPoint Connect database."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
		kong.Bind(&c.Globals, logger),
	)
	kctx.FatalIfErrorf(kctx.Run())
}
