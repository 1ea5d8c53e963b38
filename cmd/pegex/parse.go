package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/textparse/pegex/psource"
	"github.com/textparse/pegex/px"
)

func newParseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <grammar.px> <input>",
		Short: "Parse a px grammar file and run it against input text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			grammarPath, inputPath := args[0], args[1]
			grammarText, err := readArg(grammarPath)
			if err != nil {
				return fatalf("read %s: %v", grammarPath, err)
			}
			grammar, err := px.Parse(string(grammarText))
			if err != nil {
				return fatalf("parse grammar: %v", err)
			}

			table, err := buildTable(grammar)
			if err != nil {
				return fatalf("build table: %v", err)
			}

			inputText, err := readArg(inputPath)
			if err != nil {
				return fatalf("read %s: %v", inputPath, err)
			}
			match, err := table.Parse(psource.NewFromString(string(inputText)))
			if err != nil {
				return fatalf("parse input: %v", err)
			}
			fmt.Println(match.Value.String())
			return nil
		},
	}
	return cmd
}
