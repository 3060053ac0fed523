package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/simscan/internal/version"
	"github.com/ludo-technologies/simscan/service"
)

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	var short, asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the simscan version, build commit and date, Go version and platform.

Examples:
  simscan version
  simscan version --short
  simscan version --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch {
			case short:
				fmt.Fprintln(out, version.Short())
			case asJSON:
				return service.WriteJSON(out, version.Get())
			default:
				fmt.Fprintln(out, version.Info())
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Show only version number")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print build information as JSON")
	return cmd
}
