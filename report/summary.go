package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/ocupoint/linksim/pkg/pipeline"
)

// PrintSummary renders a per-stage jitter decomposition table and an eye
// opening summary for a completed run.
func PrintSummary(w io.Writer, result *pipeline.Result) {
	fmt.Fprintf(w, "run %s (%s)\n", result.RunID, result.Duration)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"stage", "ISI (ps)", "DCD (ps)", "PJ (ps)", "RJ (ps)"})
	for _, s := range result.Stages {
		table.Append([]string{
			s.Name,
			fmt.Sprintf("%.3f", s.Jitter.ISI*1e12),
			fmt.Sprintf("%.3f", s.Jitter.DCD*1e12),
			fmt.Sprintf("%.3f", s.Jitter.PJ*1e12),
			fmt.Sprintf("%.3f", s.Jitter.RJ*1e12),
		})
	}
	table.Render()

	eyeTable := tablewriter.NewWriter(w)
	eyeTable.SetHeader([]string{"eye opening", "width (UI)"})
	for i, width := range result.Eye.OpeningWidths(eyeLevels(result)) {
		eyeTable.Append([]string{fmt.Sprintf("%d", i), fmt.Sprintf("%.4f", width/result.Timing.UI)})
	}
	eyeTable.Render()
}

// eyeLevels returns the number of eye openings to measure for the run's
// modulation scheme, as eye.Grid.OpeningWidths counts them: 2 for
// NRZ/DuoBinary, 3 for PAM4.
func eyeLevels(result *pipeline.Result) int {
	if result.Config.ModType == 2 { // symbol.PAM4
		return 3
	}
	return 2
}
