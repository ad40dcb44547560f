package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"budgetplan/domain/grid"
	"budgetplan/domain/plan"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// printSummary prints the profit & loss and cash-flow rows of p as a table.
func printSummary(w io.Writer, p *plan.Plan) {
	cfg := p.Config()
	fmt.Fprintf(w, "plan %s  %d-%d  valued in %d  (%s)\n\n",
		p.ID, cfg.StartYear, cfg.StartYear+cfg.Years-1, cfg.CurrentYear, cfg.Currency)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	writeTable(tw, p.ProfitLoss(), true)
	fmt.Fprintln(tw, "\t")
	writeTable(tw, p.FCF(), false)
	writeTable(tw, p.DFCF(), false)
	tw.Flush()

	if tv, ok := p.TerminalValue(); ok {
		fmt.Fprintln(w, printer.Sprintf("\nterminal value: %.2f %s", tv, cfg.Currency))
	}
}

func writeTable(tw *tabwriter.Writer, t *grid.Table, header bool) {
	if header {
		fmt.Fprintf(tw, "\t%s\t\n", strings.Join(t.Cols(), "\t"))
	}
	rows, _ := t.Dims()
	labels := t.Rows()
	for i := 0; i < rows; i++ {
		cells := make([]string, 0, len(labels))
		for _, v := range t.Row(i) {
			cells = append(cells, printer.Sprintf("%.2f", v))
		}
		fmt.Fprintf(tw, "%s\t%s\t\n", labels[i], strings.Join(cells, "\t"))
	}
}
