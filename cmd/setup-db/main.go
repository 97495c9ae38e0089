// Command setup-db creates the schema and seeds the catalog of spaces.  It
// is safe to run repeatedly: tables are created only when missing and the
// catalog is inserted only into an empty spaces table.
//
// With -hash-password it instead prints the bcrypt hash of the password
// read from stdin, for use as ADMIN_PASSWORD_HASH.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/orablu/space-adoption/internal/config"
	"github.com/orablu/space-adoption/internal/database"
	"github.com/orablu/space-adoption/internal/logger"
	"github.com/orablu/space-adoption/internal/utils"
)

func main() {
	hashPassword := flag.Bool("hash-password", false, "read a password from stdin and print its bcrypt hash")
	noSeed := flag.Bool("no-seed", false, "create the schema without inserting the catalog")
	flag.Parse()

	if *hashPassword {
		if err := printHash(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := logger.Initialize(logger.Config{Debug: cfg.LogDebug}); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if cfg.StoreDriver != config.StoreMySQL {
		logger.Fatal("setup-db needs STORE_DRIVER=mysql", zap.String("driver", cfg.StoreDriver))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Open(ctx, dbOptions(cfg))
	if err != nil {
		logger.Fatal("connect", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	logger.Info("schema ready")
	if *noSeed {
		return
	}
	n, err := database.Seed(ctx, db, database.DefaultCatalog)
	if err != nil {
		logger.Fatal("seed", zap.Error(err))
	}
	if n == 0 {
		logger.Info("spaces already present, catalog left untouched")
		return
	}
	logger.Info("catalog seeded", zap.Int("inserted", n))
}

func printHash() error {
	fmt.Fprint(os.Stderr, "password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read password: %w", err)
	}
	hash, err := utils.HashPassword(strings.TrimRight(line, "\r\n"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func dbOptions(cfg config.Config) database.Options {
	return database.Options{User: cfg.DBUser, Password: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName}
}
