// A command line tool to check generated HTML documentation against
// directive templates.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = cobra.Command{
	Use:   "docck",
	Short: "Check generated HTML documentation against directive templates",
	Long: `docck reads @-directives embedded in template files and verifies each
of them against the files of a documentation directory. A directive can
check that a file exists, that a pattern occurs in its raw text or that
a path query into the parsed HTML matches. See the check command for
running templates and the tree command for exploring parsed files while
writing them.

Directives look like

   @has PATH                  file exists
   @has PATH PATTERN          whitespace-insensitive text search
   @matches PATH PATTERN      regular expression search
   @has PATH XPATH PATTERN    search in matching nodes or attributes
   @matches PATH XPATH PATTERN
   @count PATH XPATH COUNT    exact number of query matches
   @!…                        negates any of the above

PATH is relative to the checked directory, '-' repeats the previous
PATH. XPATH must start with '//' or './/' and supports tag, '*', '.',
'..' and '//' steps, the predicates [@attr], [@attr='value'], [tag],
[POS], [last()] and [last()-POS], and the terminals /text() and /@attr.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
