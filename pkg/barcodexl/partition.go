package barcodexl

import (
	"fmt"

	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/models"
)

// BlockCount returns ceil(rows / maxRows).
func BlockCount(rows, maxRows int) int {
	if maxRows <= 0 || rows <= 0 {
		return 0
	}
	return (rows + maxRows - 1) / maxRows
}

// Partition splits the table rows into contiguous blocks of at most
// maxRows rows, numbered from 1. Each block holds copies of its rows.
func Partition(table *models.Table, maxRows int) ([]models.Block, error) {
	if maxRows <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRowLimit, maxRows)
	}

	n := BlockCount(len(table.Rows), maxRows)
	blocks := make([]models.Block, 0, n)
	for b := 0; b < n; b++ {
		start := b * maxRows
		end := min(start+maxRows, len(table.Rows))

		rows := make([]models.Row, end-start)
		for i, row := range table.Rows[start:end] {
			rows[i] = row.Clone()
		}

		blocks = append(blocks, models.Block{
			Number: b + 1,
			Offset: start,
			Header: table.Header,
			Rows:   rows,
		})
	}
	return blocks, nil
}
