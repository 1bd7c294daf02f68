package network_test

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/matzehuels/rivergraph/pkg/network"
	"github.com/matzehuels/rivergraph/pkg/river"
)

func ExampleAssemble() {
	// Two segments of one channel and a tributary joining at the cut.
	segments := [][]river.Line{
		{
			{Name: "Chenab", Coords: orb.LineString{{72, 31}, {72, 30.5}}},
			{Name: "Chenab", Coords: orb.LineString{{72, 30.5}, {72, 30}}},
		},
		{
			{Name: "Jhelum", Coords: orb.LineString{{73, 30.5}, {72, 30.5}}},
		},
	}

	g, _ := network.Assemble(segments, network.AssembleOptions{StartEdgeID: 1})
	fmt.Println("Nodes:", g.NodeCount())
	for _, e := range g.Edges() {
		fmt.Printf("%d %s %s -> %s %.1f km\n", e.ID, e.Name, e.From, e.To, e.LengthKm)
	}
	// Output:
	// Nodes: 4
	// 1 Chenab 72.00000_31.00000 -> 72.00000_30.50000 55.5 km
	// 2 Chenab 72.00000_30.50000 -> 72.00000_30.00000 55.5 km
	// 3 Jhelum 73.00000_30.50000 -> 72.00000_30.50000 111.0 km
}

func ExampleKeyOf() {
	k := network.KeyOf(orb.Point{73.0479912, 33.6844231})
	fmt.Println(k.ID())
	// Output:
	// 73.04799_33.68442
}
