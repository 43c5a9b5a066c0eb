package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change clinic settings used on printed documents",
	}
	cmd.AddCommand(newSettingsGetCmd(a), newSettingsSetCmd(a))
	return cmd
}

func newSettingsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Show all settings or a single value",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			settings, err := s.svc.Settings(cmd.Context())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				v, ok := settings[args[0]]
				if !ok {
					return fmt.Errorf("setting %q: %w", args[0], types.ErrNotFound)
				}
				if a.flags.jsonMode {
					return printJSON(cmd.OutOrStdout(), map[string]string{args[0]: v})
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), settings)
			}

			keys := make([]string, 0, len(settings))
			for k := range settings {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			return table(cmd.OutOrStdout(), "KEY\tVALUE", func(w io.Writer) {
				for _, k := range keys {
					fmt.Fprintf(w, "%s\t%s\n", k, settings[k])
				}
			})
		},
	}
}

func newSettingsSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key=value>...",
		Short: "Change one or more settings",
		Example: `  clinic settings set clinicName="Sunrise Clinic" paperSize=A5
  clinic settings set doctorName="Dr. A. Rao" qualification=MBBS`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(types.Settings, len(args))
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok || key == "" {
					return types.Invalid("settings", "invalid setting %q (expected key=value)", arg)
				}
				values[key] = value
			}

			s, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.svc.SaveSettings(cmd.Context(), values); err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]int{"count": len(values)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d settings\n", len(values))
			return nil
		},
	}
}
