package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

func newMedicineCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "medicine",
		Aliases: []string{"inventory"},
		Short:   "Manage the medicine inventory",
	}
	cmd.AddCommand(
		newMedicineListCmd(a),
		newMedicineAddCmd(a),
		newMedicineBulkCmd(a),
		newMedicineImportCmd(a),
		newMedicineExportCmd(a),
	)
	return cmd
}

func newMedicineListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List medicines with their default dosage, duration, and instruction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			items, err := s.svc.ListInventory(cmd.Context())
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), items)
			}
			return table(cmd.OutOrStdout(), "ID\tNAME\tDOSAGE\tDURATION\tINSTRUCTION", func(w io.Writer) {
				for _, it := range items {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", it.ID, it.Name,
						orDash(it.DefaultDosage), orDash(it.DefaultDuration), orDash(it.DefaultInstruction))
				}
			})
		},
	}
}

func newMedicineAddCmd(a *app) *cobra.Command {
	var it types.InventoryItem
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a medicine to the inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			it.Name = args[0]
			id, err := s.svc.AddMedicine(cmd.Context(), it)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]int64{"id": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added medicine %d\n", id)
			return nil
		},
	}
	cmd.Flags().StringVar(&it.DefaultDosage, "dosage", "", "default dosage, e.g. 1-0-1")
	cmd.Flags().StringVar(&it.DefaultDuration, "duration", "", "default duration; a bare number means days")
	cmd.Flags().StringVar(&it.DefaultInstruction, "instruction", types.DefaultInstruction, "default instruction")
	return cmd
}

func newMedicineBulkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk <name>...",
		Short: "Add many medicine names, skipping ones already known",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.svc.BulkAddMedicines(cmd.Context(), args)
			if err != nil {
				return err
			}
			return printCount(a, cmd, n)
		},
	}
}

func newMedicineImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.xlsx>",
		Short: "Add medicine names from the first column of a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			s, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			n, err := s.svc.ImportInventory(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printCount(a, cmd, n)
		},
	}
}

func newMedicineExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file.xlsx>",
		Short: "Write the inventory to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := s.svc.ExportInventory(cmd.Context(), f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]string{"path": args[0]})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported inventory to %s\n", args[0])
			return nil
		},
	}
}

func printCount(a *app, cmd *cobra.Command, n int) error {
	if a.flags.jsonMode {
		return printJSON(cmd.OutOrStdout(), map[string]int{"count": n})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %d medicines\n", n)
	return nil
}
