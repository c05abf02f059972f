package inspect

import (
	"testing"

	"github.com/lookbusy1344/asm10/internal/firstpass"
	"github.com/lookbusy1344/asm10/internal/secondpass"
)

func TestNewPopulatesSymbolsAndImage(t *testing.T) {
	fr := firstpass.Run("t.as", "MAIN: mov #-1, r3\nstop\n.entry MAIN\n")
	if fr.Diags.HasErrors() {
		t.Fatalf("unexpected first-pass errors: %v", fr.Diags.Errors)
	}
	sr := secondpass.Run("t.as", fr)
	if sr.Diags.HasErrors() {
		t.Fatalf("unexpected second-pass errors: %v", sr.Diags.Errors)
	}

	b := New("t", fr, sr)
	if b.SymbolList.GetItemCount() != len(fr.Symbols.All()) {
		t.Errorf("SymbolList has %d items, want %d", b.SymbolList.GetItemCount(), len(fr.Symbols.All()))
	}
	// header row plus one row per code word.
	wantRows := 1 + (fr.IC - firstpass.ICInit)
	if b.ImageTable.GetRowCount() != wantRows {
		t.Errorf("ImageTable has %d rows, want %d", b.ImageTable.GetRowCount(), wantRows)
	}
	if b.LabelsView.GetText(true) == "" {
		t.Error("LabelsView should not be empty")
	}
}

func TestJumpToSelectsCorrectRow(t *testing.T) {
	fr := firstpass.Run("t.as", "MAIN: mov #-1, r3\nstop\n")
	sr := secondpass.Run("t.as", fr)
	b := New("t", fr, sr)

	b.jumpTo(firstpass.ICInit + 2)
	row, _ := b.ImageTable.GetSelection()
	if row != 3 {
		t.Errorf("jumpTo selected row %d, want 3", row)
	}
}

func TestJumpToClampsBelowFirstRow(t *testing.T) {
	fr := firstpass.Run("t.as", "stop\n")
	sr := secondpass.Run("t.as", fr)
	b := New("t", fr, sr)

	b.jumpTo(firstpass.ICInit - 5)
	row, _ := b.ImageTable.GetSelection()
	if row != 1 {
		t.Errorf("jumpTo selected row %d, want clamped to 1", row)
	}
}
