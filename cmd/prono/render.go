package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	app "github.com/okian/prono/internal/app"
	"github.com/okian/prono/internal/domain/leaderboard"
	"github.com/okian/prono/internal/domain/model"
	"github.com/okian/prono/internal/domain/types"
)

type renderer struct {
	out  io.Writer
	top  int
	user string
}

// rows applies the -user and -top filters.
func (r renderer) rows(res app.BuildResult) []model.ScoredPrediction {
	if r.user != "" {
		row, ok := res.Leaderboard.Find(r.user)
		if !ok {
			return []model.ScoredPrediction{}
		}
		return []model.ScoredPrediction{row}
	}
	if r.top > 0 {
		return res.Leaderboard.Top(r.top)
	}
	return res.Leaderboard.Rows
}

func (r renderer) writeTable(results []app.BuildResult) error {
	title := color.New(color.FgYellow, color.Bold)
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		if _, err := title.Fprintf(r.out, "\nContest %s (%d predictions)\n", res.ContestID, res.Leaderboard.Len()); err != nil {
			return err
		}

		table := tablewriter.NewWriter(r.out)
		table.SetHeader([]string{"Rank", "User", "Raw", "Placement", "Multiplier", "Final"})
		table.SetAlignment(tablewriter.ALIGN_RIGHT)
		for _, row := range r.rows(res) {
			table.Append([]string{
				strconv.Itoa(row.Rank),
				row.UserID,
				strconv.Itoa(row.RawScore),
				strconv.Itoa(row.Placement),
				fmt.Sprintf("%.2f", row.Multiplier),
				fmt.Sprintf("%.2f", row.FinalScore),
			})
		}
		table.Render()
	}
	return nil
}

// writeJSON writes one object keyed by contest id. Rejected contests are left
// out; they are reported on stderr.
func (r renderer) writeJSON(results []app.BuildResult) error {
	out := make(map[string][]types.Standing, len(results))
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		out[res.ContestID] = leaderboard.Leaderboard{ContestID: res.ContestID, Rows: r.rows(res)}.Standings()
	}

	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
