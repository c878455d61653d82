package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/untangle/pkg/graph"
	"github.com/matzehuels/untangle/pkg/metrics"
)

// =============================================================================
// JSON Document
// =============================================================================

// document is the machine-readable result format:
// {run_id, nodes, edges, metrics: {before, after}, bounded}.
type document struct {
	RunID   string          `json:"run_id"`
	Nodes   []graph.Vertex  `json:"nodes"`
	Edges   []graph.Edge    `json:"edges"`
	Metrics documentMetrics `json:"metrics"`
	Bounded bool            `json:"bounded"`
}

type documentMetrics struct {
	Before metrics.Metrics `json:"before"`
	After  metrics.Metrics `json:"after"`
}

// MarshalResult serializes a result as the machine-readable JSON document.
// The document reads straight from the Result - the same metrics the text
// report shows, with no recomputation in between.
func MarshalResult(r *Result) ([]byte, error) {
	doc := document{
		RunID:   r.RunID,
		Nodes:   r.Optimized,
		Edges:   r.Edges,
		Metrics: documentMetrics{Before: r.Before, After: r.After},
		Bounded: r.Bounded,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// UnmarshalResult decodes a JSON document back into a partial Result.
// Original positions and stats are not part of the document and stay zero.
func UnmarshalResult(data []byte) (*Result, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &Result{
		RunID:     doc.RunID,
		Optimized: doc.Nodes,
		Edges:     doc.Edges,
		Before:    doc.Metrics.Before,
		After:     doc.Metrics.After,
		Bounded:   doc.Bounded,
	}, nil
}

// =============================================================================
// Text Report
// =============================================================================

var (
	reportTitle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	reportLabel   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	reportValue   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	reportGood    = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
	reportBad     = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	reportSubtle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	reportPass    = reportGood.Render("✓ pass")
	reportFail    = reportBad.Render("✗ fail")
	reportNoValue = "n/a"
)

// WriteReport writes the human-readable text summary of a run.
// It renders the same Result the JSON document is built from.
func WriteReport(w io.Writer, r *Result) error {
	line := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", reportLabel.Render(fmt.Sprintf("%-22s", label)), value)
	}

	fmt.Fprintln(w, reportTitle.Render("Layout optimization"))
	line("graph", reportValue.Render(fmt.Sprintf("%d vertices, %d edges",
		r.Stats.VertexCount, r.Stats.EdgeCount)))
	line("crossings", fmt.Sprintf("%s → %s  (%s)",
		reportValue.Render(fmt.Sprintf("%d", r.Before.Crossings)),
		reportValue.Render(fmt.Sprintf("%d", r.After.Crossings)),
		renderReduction(r)))
	line("avg edge length", fmt.Sprintf("%s → %s",
		reportValue.Render(metrics.FormatDistance(r.Before.AvgEdgeLength)),
		reportValue.Render(metrics.FormatDistance(r.After.AvgEdgeLength))))
	line("min vertex distance", fmt.Sprintf("%s → %s",
		reportValue.Render(metrics.FormatDistance(r.Before.MinVertexDistance)),
		reportValue.Render(metrics.FormatDistance(r.After.MinVertexDistance))))
	line("within unit square", renderBounded(r.Bounded))

	cachedNote := ""
	if r.CacheInfo.LayoutHit {
		cachedNote = ", layout cached"
	}
	line("run", reportSubtle.Render(fmt.Sprintf("%s (layout %s, metrics %s%s)",
		r.RunID,
		r.Stats.LayoutTime.Round(time.Millisecond),
		r.Stats.MeasureTime.Round(time.Millisecond),
		cachedNote)))
	return nil
}

// renderReduction formats the crossing reduction percentage.
// With zero crossings before, the percentage is undefined and shown as n/a.
func renderReduction(r *Result) string {
	frac, ok := r.CrossingReduction()
	if !ok {
		return reportSubtle.Render(reportNoValue)
	}
	pct := frac * 100
	if pct >= 0 {
		return reportGood.Render(fmt.Sprintf("-%.1f%%", pct))
	}
	return reportBad.Render(fmt.Sprintf("+%.1f%%", -pct))
}

func renderBounded(ok bool) string {
	if ok {
		return reportPass
	}
	return reportFail
}
