/*
 * Utility functions for weightloader package
 */

package weightloader

import (
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"thomas-leister.de/plantforecast/predictor"
)

var tableOutput io.Writer = os.Stdout

var termNames = [predictor.WeightCount]string{
	"slope", "velocity", "acceleration", "curvature",
	"momentum", "slope*curvature", "slope*momentum", "slope^2",
}

func printWeightTable(weights predictor.Weights) {
	data := [][]string{}

	for i, w := range weights {
		row := []string{"W" + strconv.Itoa(i), termNames[i], strconv.FormatFloat(w, 'f', 6, 64)}
		data = append(data, row)
	}

	table := tablewriter.NewWriter(tableOutput)
	table.SetHeader([]string{"Weight", "Term", "Value"})
	table.SetBorder(true)
	table.AppendBulk(data)
	table.Render()
}
