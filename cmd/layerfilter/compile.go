package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/hugr-lab/layerfilter/cql"
	"github.com/hugr-lab/layerfilter/filter"
)

var compileCmd = &cobra.Command{
	Use:   "compile [forest.json]",
	Short: "Print the CQL predicate of every layer in a filter forest",
	Long: `Reads a forest snapshot from the file or stdin and prints one
"<layer><TAB><predicate>" line per layer, sorted by layer id. With --layer
only the predicate of that layer is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompile,
}

func init() {
	compileCmd.Flags().String("layer", "", "print only the predicate of this layer")
}

func runCompile(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	forest, err := filter.ParseForest(data)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if layer, _ := cmd.Flags().GetString("layer"); layer != "" {
		_, err := fmt.Fprintln(out, cql.Compile(forest, layer))
		return err
	}

	predicates := cql.CompileAll(forest)
	layers := make([]string, 0, len(predicates))
	for layer := range predicates {
		layers = append(layers, layer)
	}
	slices.Sort(layers)
	for _, layer := range layers {
		if _, err := fmt.Fprintf(out, "%s\t%s\n", layer, predicates[layer]); err != nil {
			return err
		}
	}
	return nil
}
