// Package cli implements the clinic command-line interface: storage setup,
// the local API server, and direct access to patients, medicines, settings,
// statistics, and backups.
package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
}

// app carries the global flags into subcommands.
type app struct {
	flags rootFlags
}

// NewRootCmd creates the top-level "clinic" command with global flags and all
// subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "clinic",
		Short: "Patient records, prescriptions, and certificates for a small clinic",
		Long: "Clinic keeps patient records, prescriptions, medical certificates, and the\n" +
			"medicine inventory in a local SQLite database, and serves them to the\n" +
			"desktop UI over a local HTTP API.",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newServeCmd(a),
		newPatientCmd(a),
		newMedicineCmd(a),
		newStatsCmd(a),
		newSettingsCmd(a),
		newBackupCmd(a),
	)
	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode classifies err: problems with the user's input exit 1, anything
// else exits 2.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case types.IsValidation(err),
		errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrDuplicateMedicine),
		errors.Is(err, types.ErrInvalidID):
		return exitUserError
	default:
		return exitSysError
	}
}
