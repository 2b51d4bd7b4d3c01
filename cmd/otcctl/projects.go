package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/otc/internal/core"
)

func newProjectsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "projects",
		Short: "List projects and their calculation methods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			settings, err := s.service.ListProjectSettings(cmd.Context())
			if err != nil {
				return describe(err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "UUID\tNAME\tMETHOD")
			for _, p := range settings {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ProjectUUID, p.Name, p.CalculationMethod)
			}
			return tw.Flush()
		},
	}
}

func newCalcMethodCmd(root *rootOptions) *cobra.Command {
	var project, method string

	cmd := &cobra.Command{
		Use:   "calc-method",
		Short: "Switch a project's calculation method and refresh analytics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.service.SwitchCalculationMethod(cmd.Context(), project, core.CalculationMethod(method)); err != nil {
				return describe(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "project %s now uses %s\n", project, method)
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project UUID (required)")
	cmd.Flags().StringVar(&method, "method", "", "Calculation method: or_based or otc_based (required)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("method")

	return cmd
}

func newRefreshViewsCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-views",
		Short: "Rebuild the project analytics views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := root.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.service.RefreshAnalyticsViews(cmd.Context()); err != nil {
				return describe(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "analytics views refreshed")
			return nil
		},
	}
}
