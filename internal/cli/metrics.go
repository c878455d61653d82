package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/untangle/pkg/graph"
	"github.com/matzehuels/untangle/pkg/metrics"
)

// newMetricsCmd creates the metrics command. It scores a drawing with
// the same metric engine the optimize pipeline uses, without changing
// any positions.
func newMetricsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "metrics [file]",
		Short: "Score a graph drawing without changing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return err
			}

			m := metrics.Measure(g.Vertices, g.Edges)

			if asJSON {
				data, err := json.MarshalIndent(m, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Println(StyleTitle.Render("Drawing metrics"))
			printDetail("%d vertices, %d edges", g.VertexCount(), g.EdgeCount())
			printKeyValue("crossings", fmt.Sprintf("%d", m.Crossings))
			printKeyValue("avg edge length", metrics.FormatDistance(m.AvgEdgeLength))
			printKeyValue("min vertex distance", metrics.FormatDistance(m.MinVertexDistance))
			printNextStep("Optimize this drawing", "untangle optimize "+args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print metrics as JSON")
	return cmd
}
