// ledgerctl is the operator's command line for a SQLite-backed rent ledger.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rentledger/internal/config"
	"rentledger/internal/storage"
)

func main() {
	_ = godotenv.Load()

	var dbPath string
	rootCmd := &cobra.Command{
		Use:          "ledgerctl",
		Short:        "Rent ledger administration tool",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.Load().SQLiteDBPath, "SQLite database path")

	rootCmd.AddCommand(
		migrateCmd(&dbPath),
		summaryCmd(&dbPath),
		totalsCmd(&dbPath),
		receiptCmd(&dbPath),
		tokenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openRepository opens the database, applying pending migrations.
func openRepository(dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	return repo, nil
}
