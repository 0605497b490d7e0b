/*
 * Utility functions for quantifier package
 */

package quantifier

import (
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

func printLevelTable(levels []QuantificationLevel) {
	data := [][]string{}

	for _, level := range levels {
		newlevel := []string{level.Name, strconv.FormatFloat(level.Start, 'f', 2, 64), strconv.FormatFloat(level.End, 'f', 2, 64)}
		data = append(data, newlevel)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Level", "From", "To"})
	table.SetBorder(true)
	table.AppendBulk(data)
	table.Render()
}
