package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/clinic/pkg/types"
)

func newPatientCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Search and manage patients",
	}
	cmd.AddCommand(
		newPatientListCmd(a),
		newPatientAddCmd(a),
		newPatientUpdateCmd(a),
		newPatientDeleteCmd(a),
		newPatientHistoryCmd(a),
	)
	return cmd
}

func newPatientListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [query]",
		Short: "List patients, most recently active first",
		Long: `List patients matching a name or phone fragment, most recently active
first. Without a query the 30 most recently active patients are shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			results, err := s.svc.SearchPatients(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), results)
			}
			return table(cmd.OutOrStdout(), "ID\tNAME\tAGE\tGENDER\tPHONE\tLAST VISIT", func(w io.Writer) {
				for _, p := range results {
					fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Age, p.Gender, orDash(p.Phone), lastVisit(p))
				}
			})
		},
	}
}

// patientFlags binds the patient input flags to in.
func patientFlags(cmd *cobra.Command, in *types.PatientInput) {
	cmd.Flags().StringVar(&in.Name, "name", "", "patient name")
	cmd.Flags().IntVar(&in.Age, "age", 0, "age in years")
	cmd.Flags().StringVar((*string)(&in.Gender), "gender", "", "Male, Female, or Other")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "contact phone")
}

func newPatientAddCmd(a *app) *cobra.Command {
	var in types.PatientInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a patient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := s.svc.AddPatient(cmd.Context(), in)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]int64{"id": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added patient %d\n", id)
			return nil
		},
	}
	patientFlags(cmd, &in)
	return cmd
}

func newPatientUpdateCmd(a *app) *cobra.Command {
	var in types.PatientInput
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a patient's details",
		Long:  "Change a patient's details. Fields without a flag keep their current value.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			current, err := s.svc.GetPatient(cmd.Context(), id)
			if err != nil {
				return err
			}
			merged := types.PatientInput{
				Name:   current.Name,
				Age:    current.Age,
				Gender: current.Gender,
				Phone:  current.Phone,
			}
			f := cmd.Flags()
			if f.Changed("name") {
				merged.Name = in.Name
			}
			if f.Changed("age") {
				merged.Age = in.Age
			}
			if f.Changed("gender") {
				merged.Gender = in.Gender
			}
			if f.Changed("phone") {
				merged.Phone = in.Phone
			}

			found, err := s.svc.UpdatePatient(cmd.Context(), id, merged)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("patient %d: %w", id, types.ErrNotFound)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]int64{"id": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated patient %d\n", id)
			return nil
		},
	}
	patientFlags(cmd, &in)
	return cmd
}

func newPatientDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a patient with all prescriptions and certificates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			found, err := s.svc.DeletePatient(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("patient %d: %w", id, types.ErrNotFound)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), map[string]int64{"id": id})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted patient %d\n", id)
			return nil
		},
	}
}

func newPatientHistoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show a patient's prescriptions and certificates, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := a.open(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer s.Close()

			visits, err := s.svc.PatientHistory(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), visits)
			}
			return table(cmd.OutOrStdout(), "TYPE\tID\tDATE\tDIAGNOSIS\tREST", func(w io.Writer) {
				for _, v := range visits {
					rest := "-"
					if c, ok := v.(types.CertVisit); ok {
						rest = c.StartDate + " to " + c.EndDate
					}
					fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", v.Kind(), v.VisitID(), shortDate(v.VisitDate()), v.VisitDiagnosis(), rest)
				}
			})
		},
	}
}
