/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"bytes"
	"fmt"
	"math"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/ademuri/listening-dashboard/internal/analysis"
)

// Analysis is a chart result laid out for the terminal.
type Analysis struct {
	results [][]string
	summary string
}

func newAnalysis(res analysis.Result) Analysis {
	detail, spread := false, false
	for _, p := range res.Points {
		detail = detail || p.Detail != ""
		spread = spread || p.Range != nil
	}

	header := []string{"Label", "Value"}
	if spread {
		header = append(header, "Min", "Max")
	}
	if detail {
		header = append(header, "Detail")
	}
	a := Analysis{results: [][]string{header}, summary: res.Title}
	for _, p := range res.Points {
		row := []string{p.Label, formatValue(p.Value)}
		if spread {
			if p.Range != nil {
				row = append(row, formatValue(p.Range.Min), formatValue(p.Range.Max))
			} else {
				row = append(row, "", "")
			}
		}
		if detail {
			row = append(row, p.Detail)
		}
		a.results = append(a.results, row)
	}
	if len(res.Points) == 0 {
		a.summary += " (no data for this selection)"
	}
	return a
}

func formatValue(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	table := tablewriter.NewWriter(out)
	table.Header(a.results[0])
	for _, row := range a.results[1:] {
		if err := table.Append(row); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("Error rendering table: %v", err)
	}
	fmt.Fprintf(out, "%s\n", a.summary)
	return out.String()
}
