// Command seed provisions the first owner account and a starter catalog so a
// fresh deployment is usable immediately.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/halipro/api/internal/config"
	"github.com/halipro/api/internal/database"
	"github.com/halipro/api/internal/enum"
	"github.com/halipro/api/internal/logger"
	"github.com/halipro/api/internal/service"
)

func main() {
	email := flag.String("email", "", "owner email (falls back to SEED_EMAIL)")
	password := flag.String("password", "", "owner password (falls back to SEED_PASSWORD)")
	name := flag.String("name", "Owner", "owner full name")
	flag.Parse()

	if *email == "" {
		*email = os.Getenv("SEED_EMAIL")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "email and password are required")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Environment)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("create connection pool")
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("run migrations")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	queries := database.New(tx)

	hashed, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}
	owner, err := queries.CreateUser(ctx, database.CreateUserParams{
		Email:          *email,
		HashedPassword: string(hashed),
		FullName:       *name,
		Role:           enum.UserRoleOwner,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("create owner")
	}
	log.Info().Str("email", owner.Email).Msg("owner created")

	products := []database.CreateProductParams{
		{Category: "Carpet", Name: "Machine Carpet", Unit: enum.ProductUnitSquareMeter, Price: service.DecimalToNumeric(decimal.NewFromInt(25))},
		{Category: "Carpet", Name: "Handmade Carpet", Unit: enum.ProductUnitSquareMeter, Price: service.DecimalToNumeric(decimal.NewFromInt(40))},
		{Category: "Blanket", Name: "Single Blanket", Unit: enum.ProductUnitPiece, Price: service.DecimalToNumeric(decimal.NewFromInt(60))},
		{Category: "Blanket", Name: "Double Blanket", Unit: enum.ProductUnitPiece, Price: service.DecimalToNumeric(decimal.NewFromInt(80))},
		{Category: "Curtain", Name: "Tulle Curtain", Unit: enum.ProductUnitLinearMeter, Price: service.DecimalToNumeric(decimal.NewFromInt(15))},
		{Category: "Seat", Name: "Seat Set", Unit: enum.ProductUnitSet, Price: service.DecimalToNumeric(decimal.NewFromInt(200))},
	}
	for _, p := range products {
		if _, err := queries.CreateProduct(ctx, p); err != nil {
			log.Fatal().Err(err).Str("product", p.Name).Msg("create product")
		}
	}

	for _, region := range []string{"Center", "North", "South"} {
		if _, err := queries.CreateRegion(ctx, region); err != nil {
			log.Fatal().Err(err).Str("region", region).Msg("create region")
		}
	}

	if _, err := queries.CreateDriver(ctx, database.CreateDriverParams{
		Name: "Default Driver", VehicleName: "Van", VehiclePlate: "00-AA-000",
	}); err != nil {
		log.Fatal().Err(err).Msg("create driver")
	}

	templates := []struct{ title, content string }{
		{"Ready for delivery", "Hello {customer_name}, your order {order_number} is ready. We will deliver it soon."},
		{"Payment reminder", "Hello {customer_name}, a balance of {remaining_amount} remains on order {order_number}."},
	}
	for _, t := range templates {
		if _, err := queries.CreateMessageTemplate(ctx, t.title, t.content); err != nil {
			log.Fatal().Err(err).Str("template", t.title).Msg("create template")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal().Err(err).Msg("commit transaction")
	}
	log.Info().Msg("seed complete")
}
