package overview

import (
	"fmt"
	"slices"

	"github.com/alisw/ci-overview/internal/domain/model"
)

// Indent and Separator are the fixed table spacing units shared by the
// layout arithmetic and the text renderer.
const (
	Indent    = "  "
	Separator = "  "
)

// Cell is one laid-out table entry: a status and its display label.
type Cell struct {
	Status model.CheckStatus
	Label  string // "#<number>", right-padded to the widest pull number.
}

// Layout sorts statuses most recent first (stable, so equal timestamps keep
// their input order) and partitions them into rows that fit displayWidth.
// The result is a pure function of its inputs; an empty input yields no rows
// and the renderer shows a placeholder instead.
func Layout(statuses []model.CheckStatus, displayWidth int) [][]Cell {
	if len(statuses) == 0 {
		return nil
	}

	sorted := slices.Clone(statuses)
	slices.SortStableFunc(sorted, func(a, b model.CheckStatus) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	labelWidth := 1
	for _, status := range sorted {
		if w := numberWidth(status.PullNumber); w > labelWidth {
			labelWidth = w
		}
	}

	// One cell costs len("#")+labelWidth plus a separator; the indent is paid
	// twice per row. Degenerate widths still lay out one item per row.
	itemsPerRow := (displayWidth - 2*len(Indent) + len(Separator)) /
		(1 + labelWidth + len(Separator))
	if itemsPerRow < 1 {
		itemsPerRow = 1
	}

	var rows [][]Cell
	for chunk := range slices.Chunk(sorted, itemsPerRow) {
		row := make([]Cell, len(chunk))
		for i, status := range chunk {
			row[i] = Cell{
				Status: status,
				Label:  fmt.Sprintf("#%*d", labelWidth, status.PullNumber),
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// numberWidth counts the decimal digits of n, minimum 1.
func numberWidth(n int) int {
	width := 1
	for n >= 10 {
		n /= 10
		width++
	}
	return width
}
