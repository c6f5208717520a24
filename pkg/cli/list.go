package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured tasks",
	Run:   runList,
}

// runList executes the list command
func runList(cmd *cobra.Command, args []string) {
	s := loadSession()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tSCHEME\tBUILD DIR")
	for _, t := range s.repo.All() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.Name(), t.Kind(), t.Scheme(), t.BuildDir())
	}
	if err := w.Flush(); err != nil {
		ExitWithErrorf(s.logger, "Failed to write task list: %v", err)
	}
}
