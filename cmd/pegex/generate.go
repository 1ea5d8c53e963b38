package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/textparse/pegex/px"
)

func newGenerateCmd() *cobra.Command {
	var pkg string

	cmd := &cobra.Command{
		Use:   "generate <grammar.px>",
		Short: "Compile a px grammar into a Go source file defining its peg.Table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			grammarPath := args[0]
			text, err := readArg(grammarPath)
			if err != nil {
				return fatalf("read %s: %v", grammarPath, err)
			}
			grammar, err := px.Parse(string(text))
			if err != nil {
				return fatalf("parse grammar: %v", err)
			}
			if err := px.Generate(os.Stdout, pkg, grammar); err != nil {
				return fatalf("generate: %v", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&pkg, "package", "grammar", "package name for the generated file")
	return cmd
}
