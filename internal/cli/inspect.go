package cli

import (
	"cmp"
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rivergraph/pkg/network"
	"github.com/matzehuels/rivergraph/pkg/pipeline"
)

// defaultTopChannels is how many channels the summary lists.
const defaultTopChannels = 10

// channel aggregates the flow edges that share a name.
type channel struct {
	Name     string
	Segments int
	LengthKm float64
}

// channelsOf groups flow edges by name, longest channel first.
func channelsOf(g *network.Graph) []channel {
	byName := make(map[string]*channel)
	var order []string
	for _, e := range g.EdgesOfType(network.EdgeFlow) {
		ch, ok := byName[e.Name]
		if !ok {
			ch = &channel{Name: e.Name}
			byName[e.Name] = ch
			order = append(order, e.Name)
		}
		ch.Segments++
		ch.LengthKm += e.LengthKm
	}

	out := make([]channel, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	slices.SortStableFunc(out, func(a, b channel) int {
		if c := cmp.Compare(b.LengthKm, a.LengthKm); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		interactive bool
		top         int
	)

	cmd := &cobra.Command{
		Use:   "inspect " + networkArgs,
		Short: "Summarize a built network",
		Long: `Inspect prints node and edge counts, sources and sinks, and the longest
channels of a network written by build, read from its graph.json or its
nodes.csv and edges.csv pair. With -i it opens an interactive
channel browser.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadNetwork(args)
			if err != nil {
				return err
			}
			if interactive {
				_, err := tea.NewProgram(NewChannelListModel(g), tea.WithContext(cmd.Context())).Run()
				return err
			}
			summarize(g, args[0], top)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse channels interactively")
	cmd.Flags().IntVar(&top, "top", defaultTopChannels, "number of channels to list")

	return cmd
}

// summarize prints the inspect report for g.
func summarize(g *network.Graph, path string, top int) {
	fmt.Fprintln(stdout, StyleTitle.Render(path))
	printKeyValue("nodes", StyleNumber.Render(fmt.Sprint(g.NodeCount())))
	printKeyValue("flow edges", StyleNumber.Render(fmt.Sprint(len(g.EdgesOfType(network.EdgeFlow)))))
	if n := len(g.EdgesOfType(network.EdgeProximity)); n > 0 {
		printKeyValue("proximity edges", StyleNumber.Render(fmt.Sprint(n)))
	}
	if n := len(g.EdgesOfType(network.EdgeCorrelation)); n > 0 {
		printKeyValue("correlation", StyleNumber.Render(fmt.Sprint(n)))
	}
	printKeyValue("sources", fmt.Sprint(len(g.Sources())))
	printKeyValue("sinks", fmt.Sprint(len(g.Sinks())))
	if runID, ok := g.Meta()[pipeline.MetaRunID].(string); ok {
		printKeyValue("run id", runID)
	}

	if err := g.Validate(); err != nil {
		printWarning("graph is inconsistent: %v", err)
	}
	if g.HasFlowCycle() {
		printWarning("flow edges form a cycle (braided channel or reversed line)")
	}

	channels := channelsOf(g)
	if len(channels) == 0 || top <= 0 {
		return
	}
	rows := make([][]string, 0, min(top, len(channels)))
	for _, ch := range channels[:min(top, len(channels))] {
		rows = append(rows, []string{ch.Name, fmt.Sprint(ch.Segments), fmt.Sprintf("%.2f", ch.LengthKm)})
	}
	fmt.Fprintln(stdout)
	printTable([]string{"CHANNEL", "SEGMENTS", "KM"}, rows)
	if len(channels) > top {
		printDetail("%d more channels, use -i to browse", len(channels)-top)
	}
}
