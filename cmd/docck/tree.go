package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/fractalqb/docck"
	"github.com/spf13/cobra"
)

func init() {
	treeCmd.Run = dumpTrees
	treeCmd.Flags().BoolVarP(&treeCmd.text, "text", "t", treeCmd.text,
		"Also print the flattened text of each element")
	rootCmd.AddCommand(&treeCmd.Command)
}

var treeCmd = struct {
	cobra.Command
	text bool
}{
	Command: cobra.Command{
		Use:   "tree <file>...",
		Short: "Dump the parsed element tree of HTML files",
		Long: `tree parses each file with the checker's HTML parser and prints an
indented outline of its elements and attributes. This helps finding
path queries while writing check templates: what tree prints is exactly
what @has, @matches and @count queries operate on.`,
		Args: cobra.MinimumNArgs(1),
	},
}

func dumpTrees(cmd *cobra.Command, files []string) {
	for _, file := range files {
		rd, err := os.Open(file)
		if err != nil {
			log.Fatal(err)
		}
		t, err := docck.ParseTree(file, rd)
		rd.Close()
		if err != nil {
			log.Fatal(err)
		}
		if len(files) > 1 {
			fmt.Printf("%s:\n", file)
		}
		for _, top := range t.Root.Kids {
			dumpNode(os.Stdout, top, 0)
		}
	}
}

func dumpNode(w io.Writer, n *docck.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%s<%s", indent, n.Tag)
	keys := make([]string, 0, len(n.Attr))
	for k := range n.Attr {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, " %s=%q", k, n.Attr[k])
	}
	fmt.Fprintln(w, ">")
	if treeCmd.text {
		if txt := strings.TrimSpace(n.Flatten()); txt != "" {
			fmt.Fprintf(w, "%s  %q\n", indent, txt)
		}
	}
	for _, kid := range n.Kids {
		dumpNode(w, kid, depth+1)
	}
}
