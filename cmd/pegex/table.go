package main

import (
	"github.com/textparse/pegex/peg"
	"github.com/textparse/pegex/px"
)

// buildTable turns a parsed px grammar into a runnable peg.Table. The
// grammar must declare its own "TOP" rule; px does not invent one.
func buildTable(g *px.Grammar) (*peg.Table, error) {
	return peg.New(g.Rules())
}
