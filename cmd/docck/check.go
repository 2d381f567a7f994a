package main

import (
	"fmt"
	"log"
	"os"

	"github.com/fractalqb/docck"
	"github.com/spf13/cobra"
)

func init() {
	checkCmd.Run = checkDocs
	rootCmd.AddCommand(&checkCmd.Command)
}

var checkCmd = struct {
	cobra.Command
}{
	Command: cobra.Command{
		Use:   "check <doc dir> <template>...",
		Short: "Run directive templates against a documentation directory",
		Args:  cobra.MinimumNArgs(2),
	},
}

func checkDocs(cmd *cobra.Command, args []string) {
	ck := docck.Check{Dir: args[0]}
	errs := 0
	for _, tpl := range args[1:] {
		res, err := ck.File(tpl)
		if res != nil {
			res.WriteTo(os.Stderr)
			errs += res.ErrCount()
		}
		if err != nil {
			log.Fatal(err)
		}
	}
	if errs > 0 {
		fmt.Fprintf(os.Stderr, "\nEncountered %d errors\n", errs)
		os.Exit(1)
	}
}
