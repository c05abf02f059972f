// Package inspect implements a read-only TUI browser over a finished
// assembly session: the symbol table, the code image, and the
// entries/externals that were emitted. It is not a debugger -- there is
// no execution model to step -- so it carries none of the
// step/continue/breakpoint machinery the teacher's debugger TUI has.
// Adapted from debugger/tui.go's tcell/tview Flex-of-panels layout.
package inspect

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lookbusy1344/asm10/internal/firstpass"
	"github.com/lookbusy1344/asm10/internal/secondpass"
	"github.com/lookbusy1344/asm10/internal/word"
)

// Browser is the TUI application state.
type Browser struct {
	App    *tview.Application
	Layout *tview.Flex

	SymbolList   *tview.List
	ImageTable   *tview.Table
	LabelsView   *tview.TextView
	StatusView   *tview.TextView

	first  *firstpass.Result
	second *secondpass.Result
	basename string
}

// New builds a Browser over a completed session's first- and second-pass
// results.
func New(basename string, first *firstpass.Result, second *secondpass.Result) *Browser {
	b := &Browser{
		App:      tview.NewApplication(),
		first:    first,
		second:   second,
		basename: basename,
	}
	b.initViews()
	b.buildLayout()
	b.populate()
	return b
}

func (b *Browser) initViews() {
	b.SymbolList = tview.NewList().ShowSecondaryText(false)
	b.SymbolList.SetBorder(true).SetTitle(" Symbols ")

	b.ImageTable = tview.NewTable().SetBorders(false).SetFixed(1, 0)
	b.ImageTable.SetBorder(true).SetTitle(" Code Image ")

	b.LabelsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	b.LabelsView.SetBorder(true).SetTitle(" Entries / Externals ")

	b.StatusView = tview.NewTextView().SetDynamicColors(true)
	b.StatusView.SetBorder(true).SetTitle(" Status ")
}

func (b *Browser) buildLayout() {
	left := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(b.SymbolList, 0, 1, true).
		AddItem(b.LabelsView, 0, 1, false)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(b.ImageTable, 0, 3, false).
		AddItem(b.StatusView, 3, 0, false)

	b.Layout = tview.NewFlex().
		AddItem(left, 0, 1, true).
		AddItem(right, 0, 2, false)
}

func (b *Browser) populate() {
	for _, sym := range b.first.Symbols.All() {
		sym := sym
		label := fmt.Sprintf("%-20s %-9s %d", sym.Name, sym.Kind, sym.Address)
		b.SymbolList.AddItem(label, "", 0, func() {
			b.jumpTo(sym.Address)
		})
	}

	b.ImageTable.SetCell(0, 0, tview.NewTableCell("Addr").SetSelectable(false))
	b.ImageTable.SetCell(0, 1, tview.NewTableCell("Word").SetSelectable(false))
	b.ImageTable.SetCell(0, 2, tview.NewTableCell("Base4").SetSelectable(false))
	row := 1
	for addr := firstpass.ICInit; addr < b.first.IC; addr++ {
		w := b.first.Image.Get(addr - firstpass.ICInit)
		b.ImageTable.SetCell(row, 0, tview.NewTableCell(fmt.Sprintf("%d", addr)))
		b.ImageTable.SetCell(row, 1, tview.NewTableCell(fmt.Sprintf("%010s", word.ToBinary(w, 10))))
		b.ImageTable.SetCell(row, 2, tview.NewTableCell(word.ToBase4Letters(w)))
		row++
	}

	var labels strings.Builder
	labels.WriteString("[yellow]Entries:[-]\n")
	for _, e := range b.second.Entries {
		fmt.Fprintf(&labels, "  %-20s %s\n", e.Label, word.ToBase4Letters(e.Addr))
	}
	labels.WriteString("[yellow]Externals:[-]\n")
	for _, e := range secondpass.SortedExternals(b.second.Externals) {
		fmt.Fprintf(&labels, "  %-20s %s\n", e.Label, word.ToBase4Letters(e.Addr))
	}
	b.LabelsView.SetText(labels.String())

	fmt.Fprintf(b.StatusView, "%s: IC=%d DC=%d  (q to quit)", b.basename, b.first.IC, b.first.DC)
}

// jumpTo scrolls the image table to the row holding address addr.
func (b *Browser) jumpTo(addr int) {
	row := addr - firstpass.ICInit + 1
	if row < 1 {
		row = 1
	}
	b.ImageTable.Select(row, 0)
}

// Run starts the TUI event loop. Callers typically gate this behind a
// terminal check, since it requires an interactive tty.
func (b *Browser) Run() error {
	b.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Rune() == 'q' {
			b.App.Stop()
			return nil
		}
		return event
	})
	return b.App.SetRoot(b.Layout, true).SetFocus(b.SymbolList).Run()
}
