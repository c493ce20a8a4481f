package cli

import (
	"fmt"

	"github.com/JonMunkholm/countrymap/internal/database"
	"github.com/spf13/cobra"
)

var recreate bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the registry tables",
	Long: `Creates the country_codes and country_names tables if they are missing.

With --recreate both tables are dropped first. Every registered code and
name is lost.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&recreate, "recreate", false, "drop and recreate the tables")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if recreate {
		if err := database.Recreate(ctx, pool); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "schema recreated")
		return nil
	}

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
	return nil
}
