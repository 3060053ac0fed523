package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/simscan/internal/version"
	"github.com/ludo-technologies/simscan/service"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "simscan",
		Short: "Find suspiciously similar submissions",
		Long: `simscan estimates the textual similarity of every pair of submissions
with MinHash signatures and flags the pairs that stand out from the rest
of the class.

For each submission file name it reports the students whose copy is at
least the standard-deviation factor above the average maximum similarity.`,
		Version:       version.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewScanCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewHistoryCmd())
	rootCmd.AddCommand(NewVersionCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError prints err with its category and recovery suggestions
func printError(w io.Writer, err error) {
	categorizer := service.NewErrorCategorizer()
	categorized := categorizer.Categorize(err)

	fmt.Fprintf(w, "Error: %s\n", categorized.Message)
	if categorized.Message != err.Error() {
		fmt.Fprintf(w, "  %s\n", err.Error())
	}
	for _, s := range categorizer.GetRecoverySuggestions(categorized.Category) {
		fmt.Fprintf(w, "  - %s\n", s)
	}
}
