package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gnolang/typelint/internal"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the available lint rules",
	Run: func(cmd *cobra.Command, args []string) {
		printRules(os.Stdout)
	},
}

func printRules(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tDEFAULT SEVERITY")
	for _, name := range internal.RuleNames() {
		rule, _ := internal.NewRule(name, logger)
		fmt.Fprintf(tw, "%s\t%s\n", name, rule.Severity())
	}
	_ = tw.Flush()
}
