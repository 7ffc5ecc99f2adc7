package cmd

import (
	"github.com/fatih/color"

	"statuscheck-go/status"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

// formatVerdict renders a one-line summary of a flow result.
func formatVerdict(res *status.FlowResult) string {
	if !res.OK {
		return colorError("✖ " + res.Error)
	}
	switch res.Structured.Outcome {
	case status.OutcomeClearAndCurrent:
		return colorSuccess("✔ clear and current")
	case status.OutcomeCurrent:
		return colorSuccess("✔ current")
	case status.OutcomeNotCurrent:
		return colorWarn("⚠ not current")
	default:
		return colorWarn("? unknown outcome")
	}
}

func formatProbeStatus(p status.ProbeResult) string {
	switch {
	case p.OK:
		return colorSuccess(p.HTTPStatus)
	case p.HTTPStatus == 0:
		return colorError("down")
	default:
		return colorWarn(p.HTTPStatus)
	}
}
