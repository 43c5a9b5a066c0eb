package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clinic/internal/paths"
	"github.com/mesh-intelligence/clinic/internal/sqlite"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize clinic storage",
		Long:  "Create the configuration and data directories, write a default config.yaml, and create or migrate the database.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, err := paths.ResolveConfigDir(a.flags.configDir)
			if err != nil {
				return fmt.Errorf("resolve config dir: %w", err)
			}
			if err := writeConfigIfMissing(configDir); err != nil {
				return err
			}
			cfg, err := loadConfig(configDir, a.flags.dataDir)
			if err != nil {
				return err
			}

			store, err := sqlite.Open(cmd.Context(), databasePath(cfg))
			if err != nil {
				return fmt.Errorf("initialize storage: %w", err)
			}
			defer store.Close()
			version, err := store.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}

			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"configDir":     configDir,
					"database":      store.Path(),
					"schemaVersion": version,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Clinic initialized\nconfig:   %s\ndatabase: %s (schema v%d)\n", configDir, store.Path(), version)
			return nil
		},
	}
}
