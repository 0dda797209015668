package evtctl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"evt/internal/script"
)

var (
	titleStyle = pterm.NewStyle(pterm.FgCyan, pterm.Bold)
	panicStyle = pterm.NewStyle(pterm.FgRed)
	mutedStyle = pterm.NewStyle(pterm.FgGray)
)

// renderTrace writes one table row per step followed by the final stats.
func renderTrace(w io.Writer, tr script.Trace) error {
	data := pterm.TableData{{"STEP", "OP", "EVENT", "ID", "RESULT", "CALLS"}}
	for _, e := range tr.Entries {
		data = append(data, []string{
			strconv.Itoa(e.Step),
			e.Op,
			e.Event,
			idCell(e),
			resultCell(e),
			callsCell(e),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, titleStyle.Sprint(tr.Name))
	fmt.Fprintln(w, table)
	fmt.Fprintln(w, mutedStyle.Sprintf("events=%d subscriptions=%d last_id=%d",
		tr.Stats.Events, tr.Stats.Subscriptions, tr.Stats.LastID))
	return nil
}

func idCell(e script.Entry) string {
	if e.ID < 0 {
		return "-"
	}
	return strconv.FormatInt(int64(e.ID), 10)
}

func resultCell(e script.Entry) string {
	var parts []string
	switch e.Op {
	case script.OpUnsubscribe, script.OpUnsubscribeID, script.OpUnsubscribeEvent:
		if e.Removed {
			parts = append(parts, "removed")
		} else {
			parts = append(parts, "no-op")
		}
	case script.OpPublish:
		parts = append(parts, fmt.Sprintf("%d calls", len(e.Calls)))
	}
	for _, p := range e.Panics {
		parts = append(parts, panicStyle.Sprint("panic: "+p))
	}
	return strings.Join(parts, " ")
}

func callsCell(e script.Entry) string {
	out := make([]string, 0, len(e.Calls))
	for _, c := range e.Calls {
		out = append(out, c.String())
	}
	return strings.Join(out, ", ")
}
