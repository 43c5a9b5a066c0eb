package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clinic/internal/sqlite"
)

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [path]",
		Short: "Copy the database to a backup file",
		Long: `Copy the database to a backup file. Without a path the backup is written
to Clinic_Backup_<YYYY-MM-DD>.db in the current directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dst := sqlite.DefaultBackupName(time.Now())
			if len(args) == 1 {
				dst = args[0]
			}

			s, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := s.svc.Export(cmd.Context(), dst)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backed up %d bytes to %s\n", res.Bytes, res.Path)
			return nil
		},
	}
}
