package px

import (
	"io"

	"github.com/dave/jennifer/jen"
)

// Generate writes Go source for pkg defining two package-level variables:
// TableRules, a []peg.Rule literal holding exactly the rules parsed into g,
// and Table, the *peg.Table that peg.New builds from TableRules at package
// initialization (panicking if peg.New fails). The emitted file imports
// github.com/textparse/pegex/peg and fmt.
func Generate(w io.Writer, pkg string, g *Grammar) error {
	const peg = "github.com/textparse/pegex/peg"

	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by px.Generate. DO NOT EDIT.")

	rulesLit := make([]jen.Code, 0, len(g.defs))
	for _, d := range g.defs {
		fields := []jen.Code{
			jen.Id("Name").Op(":").Lit(d.Name),
			jen.Id("Pegexp").Op(":").Lit(d.Pegexp),
		}
		if len(d.Captures) > 0 {
			items := make([]jen.Code, len(d.Captures))
			for i, c := range d.Captures {
				items[i] = jen.Lit(c)
			}
			fields = append(fields, jen.Id("Captures").Op(":").Index().String().Values(items...))
		}
		rulesLit = append(rulesLit, jen.Values(fields...))
	}

	f.Var().Id("TableRules").Op("=").Index().Qual(peg, "Rule").Values(rulesLit...)

	f.Line()
	f.Var().Id("Table").Op("=").Func().Params().Op("*").Qual(peg, "Table").Block(
		jen.List(jen.Id("t"), jen.Err()).Op(":=").Qual(peg, "New").Call(jen.Id("TableRules")),
		jen.If(jen.Err().Op("!=").Nil()).Block(
			jen.Panic(jen.Qual("fmt", "Sprintf").Call(jen.Lit("px: generated table is malformed: %v"), jen.Err())),
		),
		jen.Return(jen.Id("t")),
	).Call()

	return f.Render(w)
}
