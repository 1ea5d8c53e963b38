// Command pegex is a thin wrapper around the rx, peg and px libraries: it
// slurps a pattern or grammar file, runs it against input, and prints the
// result. All the real work happens in those packages; this binary only
// parses flags and formats output.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pegex",
		Short: "Match text against rx regexes and px grammars",
	}
	root.AddCommand(newMatchCmd())
	root.AddCommand(newParseCmd())
	root.AddCommand(newGenerateCmd())
	return root
}

func readArg(path string) ([]byte, error) {
	if path == "-" {
		return os.ReadFile("/dev/stdin")
	}
	return os.ReadFile(path)
}

func fatalf(format string, args ...any) error {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	return fmt.Errorf(format, args...)
}
