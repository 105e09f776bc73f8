package graph

import (
	"os"

	"github.com/funvibe/funxy-fa/internal/fa"
	"github.com/funvibe/funxy-fa/internal/typesystem"
	"github.com/funvibe/funxy-fa/internal/value"
)

// LoadFile reads path as DOT and builds an FA value over it, matching
// get_nfa_from_graph(graph, graph.nodes, graph.nodes): every node is
// both a start and a final state by default (§4.3 `load`).
func LoadFile(path string) (*fa.Automaton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadSource(string(data))
}

// LoadSource is LoadFile without a filesystem dependency: it builds the
// FA from DOT source text directly (LoadFile and the tests call it).
func LoadSource(src string) (*fa.Automaton, error) {
	g, err := Parse(src)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]value.Int, len(g.Nodes))
	for _, n := range g.Nodes {
		iv, err := ToInt64(n)
		if err != nil {
			return nil, err
		}
		ids[n] = value.Int(iv)
	}

	a := fa.New(typesystem.Int{})
	for _, id := range ids {
		a.MarkStart(id)
		a.MarkFinal(id)
	}
	for _, e := range g.Edges {
		a.AddTransition(ids[e.From], e.Label, ids[e.To])
	}

	return a, nil
}
