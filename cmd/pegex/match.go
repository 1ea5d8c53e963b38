package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/textparse/pegex/rx"
)

func newMatchCmd() *cobra.Command {
	var find bool

	cmd := &cobra.Command{
		Use:   "match <pattern> <text>",
		Short: "Compile an rx pattern and match it against text",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern, text := args[0], args[1]
			prog, err := rx.Compile(pattern, rx.AllFeatures, 0)
			if err != nil {
				return fatalf("compile %q: %v", pattern, err)
			}
			vm := rx.NewVM(prog)
			var result *rx.Result
			if find {
				result = vm.Find([]byte(text), 0)
			} else {
				result = vm.MatchAt([]byte(text), 0)
			}
			if !result.Matched() {
				fmt.Println("no match")
				return nil
			}
			start, end := result.Range()
			fmt.Printf("match [%d,%d): %q\n", start, end, text[start:end])
			for i := 1; i <= result.NumGroups(); i++ {
				gs, ge, ok := result.Group(i)
				if !ok {
					continue
				}
				fmt.Printf("  group %d [%d,%d): %q\n", i, gs, ge, text[gs:ge])
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&find, "find", false, "search for a match anywhere in text instead of anchoring at offset 0")
	return cmd
}
