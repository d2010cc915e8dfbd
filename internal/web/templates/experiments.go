package templates

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"
)

func statusClass(status string) string {
	switch status {
	case "running":
		return "status status-running"
	case "paused":
		return "status status-paused"
	case "completed":
		return "status status-completed"
	default:
		return "status"
	}
}

// Experiments renders the read-only experiment listing.
func Experiments(experiments []Experiment) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Experiments · abtrack</title>`)
		b.WriteString(`<style>body{font-family:system-ui,sans-serif;margin:2rem}table{border-collapse:collapse;margin-bottom:2rem}` +
			`td,th{border:1px solid #ddd;padding:.4rem .8rem;text-align:left}.status{font-weight:600}` +
			`.status-running{color:#137333}.status-paused{color:#b06000}.status-completed{color:#555}</style>`)
		b.WriteString(`</head><body><h1>Experiments</h1>`)

		if len(experiments) == 0 {
			b.WriteString(`<p>No experiments registered.</p>`)
		}

		for _, e := range experiments {
			fmt.Fprintf(&b, `<section id="%s"><h2>%s <small class="%s">%s</small></h2>`,
				templ.EscapeString(e.ID), templ.EscapeString(e.Name),
				statusClass(e.Status), templ.EscapeString(e.Status))
			if e.Description != "" {
				fmt.Fprintf(&b, `<p>%s</p>`, templ.EscapeString(e.Description))
			}
			fmt.Fprintf(&b, `<p>Traffic: %d%% · Events: %d`, e.TrafficPercent, e.TotalEvents)
			if e.Goal != "" {
				fmt.Fprintf(&b, ` · Goal: %s`, templ.EscapeString(e.Goal))
			}
			if e.TargetMetric != "" {
				fmt.Fprintf(&b, ` · Metric: %s`, templ.EscapeString(e.TargetMetric))
			}
			b.WriteString(`</p><table><thead><tr><th>Variant</th><th>Name</th><th>Weight</th></tr></thead><tbody>`)
			for _, v := range e.Variants {
				fmt.Fprintf(&b, `<tr><td>%s</td><td>%s</td><td>%d</td></tr>`,
					templ.EscapeString(v.ID), templ.EscapeString(v.Name), v.Weight)
			}
			b.WriteString(`</tbody></table></section>`)
		}

		b.WriteString(`</body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
