package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/pgslice/pkg/dataaccess"
	"github.com/Jacobbrewer1/pgslice/pkg/logging"
	"github.com/Jacobbrewer1/pgslice/pkg/vault"
	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"
)

const (
	appName = `pgslice`

	// exitNoRows is the exit status when the condition matched no rows. It is
	// distinct from general failure so automation can branch on it.
	exitNoRows = 3
)

// DatabaseConnection is the environment fallback for the connection flags.
type DatabaseConnection struct {
	// DSN is the full lib/pq connection string.
	DSN string `env:"PGSLICE_DB_DSN"`
}

// connFlags is the connection flag group shared by the dump and manifest
// commands.
type connFlags struct {
	db        string
	host      string
	port      int
	user      string
	pass      string
	sslMode   string
	vaultAddr string
	vaultPath string
}

func (c *connFlags) register(f *flag.FlagSet) {
	f.StringVar(&c.db, "db", "", "The database name to connect to (required unless PGSLICE_DB_DSN is set)")
	f.StringVar(&c.host, "host", "localhost", "The database host")
	f.IntVar(&c.port, "port", 5432, "The database port")
	f.StringVar(&c.user, "user", "", "The database user")
	f.StringVar(&c.pass, "pass", "", "The database password")
	f.StringVar(&c.sslMode, "sslmode", "disable", "The lib/pq sslmode")
	f.StringVar(&c.vaultAddr, "vault-addr", "", "The vault address to fetch database credentials from (Requires VAULT_APPROLE_ID and VAULT_APPROLE_SECRET_ID to be set)")
	f.StringVar(&c.vaultPath, "vault-path", "", "The vault secret path holding the username and password keys")
}

// connectionStr resolves the connection string: flags win, vault supplies
// credentials when configured, and the PGSLICE_DB_DSN environment variable is
// the fallback when no database name is given.
func (c *connFlags) connectionStr() (string, error) {
	if c.db == "" {
		dbConnEnv := new(DatabaseConnection)
		if err := env.Parse(dbConnEnv); err != nil {
			return "", fmt.Errorf("error parsing environment variables: %w", err)
		}
		if dbConnEnv.DSN == "" {
			return "", errors.New("no database provided")
		}
		return dbConnEnv.DSN, nil
	}

	v := viper.New()
	v.Set("db.host", c.host)
	v.Set("db.port", c.port)
	v.Set("db.user", c.user)
	v.Set("db.pass", c.pass)
	v.Set("db.name", c.db)
	v.Set("db.sslmode", c.sslMode)

	var secrets vault.Secrets
	if c.vaultAddr != "" {
		vc, err := vault.NewClient(c.vaultAddr)
		if err != nil {
			return "", fmt.Errorf("error connecting to vault: %w", err)
		}

		secrets, err = vc.GetSecrets(c.vaultPath)
		if err != nil {
			return "", fmt.Errorf("error fetching database credentials: %w", err)
		}

		slog.Debug("Fetched database credentials from vault")
	}

	return dataaccess.GenerateConnectionStr(v, secrets), nil
}

func initLogging() error {
	if err := logging.Init(appName); err != nil {
		return fmt.Errorf("error initializing logging: %w", err)
	}
	return nil
}
