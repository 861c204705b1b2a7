package network

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	gonetwork "gonum.org/v1/gonum/graph/network"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/induslogic/isapa/internal/domain"
	"github.com/induslogic/isapa/internal/events"
	"github.com/induslogic/isapa/internal/modules/grammar"
)

// PageRank parameters, conventional values.
const (
	pageRankDamping   = 0.85
	pageRankTolerance = 1e-6
)

// terminalLimit caps the reported terminal signs.
const terminalLimit = 5

// BigramSource supplies the aggregated transition counts.
type BigramSource interface {
	Bigrams() ([]domain.Bigram, error)
}

// Service analyzes the sign transition network.
type Service struct {
	grammar      *grammar.Grammar
	bigrams      BigramSource
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewService creates a new network service
func NewService(g *grammar.Grammar, bigrams BigramSource, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		grammar:      g,
		bigrams:      bigrams,
		eventManager: eventManager,
		log:          log.With().Str("service", "network").Logger(),
	}
}

// DegreeEntry is the weighted connectivity of one sign.
type DegreeEntry struct {
	Sign      domain.SignID `json:"sign"`
	Name      string        `json:"name"`
	InDegree  int64         `json:"in_degree"`
	OutDegree int64         `json:"out_degree"`
}

// RankEntry is the PageRank centrality of one sign.
type RankEntry struct {
	Sign domain.SignID `json:"sign"`
	Name string        `json:"name"`
	Rank float64       `json:"rank"`
}

// Metrics describes the transition network.
type Metrics struct {
	Nodes     int           `json:"nodes"`
	Edges     int           `json:"edges"`
	Density   float64       `json:"density"`
	Degrees   []DegreeEntry `json:"degrees"`
	Terminals []DegreeEntry `json:"terminals"`
	PageRank  []RankEntry   `json:"pagerank"`
}

// Analyze builds the transition graph from the current aggregates and
// computes its metrics. Weighted degrees count every observation; the
// graph itself drops self transitions, which gonum simple graphs reject.
func (s *Service) Analyze() (*Metrics, error) {
	bigrams, err := s.bigrams.Bigrams()
	if err != nil {
		return nil, fmt.Errorf("failed to analyze network: %w", err)
	}

	inDegree := make(map[domain.SignID]int64)
	outDegree := make(map[domain.SignID]int64)

	g := simple.NewWeightedDirectedGraph(0, 0)
	edges := 0
	for _, b := range bigrams {
		outDegree[b.Source] += b.Count
		inDegree[b.Target] += b.Count

		if b.Source == b.Target {
			continue
		}
		g.SetWeightedEdge(g.NewWeightedEdge(
			simple.Node(b.Source),
			simple.Node(b.Target),
			float64(b.Count),
		))
		edges++
	}

	nodes := make(map[domain.SignID]struct{}, len(inDegree)+len(outDegree))
	for id := range inDegree {
		nodes[id] = struct{}{}
	}
	for id := range outDegree {
		nodes[id] = struct{}{}
	}

	metrics := &Metrics{
		Nodes:     len(nodes),
		Edges:     edges,
		Degrees:   []DegreeEntry{},
		Terminals: []DegreeEntry{},
		PageRank:  []RankEntry{},
	}

	if len(nodes) > 1 {
		metrics.Density = float64(edges) / float64(len(nodes)*(len(nodes)-1))
	}

	for id := range nodes {
		metrics.Degrees = append(metrics.Degrees, DegreeEntry{
			Sign:      id,
			Name:      s.grammar.NameOf(id),
			InDegree:  inDegree[id],
			OutDegree: outDegree[id],
		})
	}
	sort.Slice(metrics.Degrees, func(i, j int) bool {
		return metrics.Degrees[i].Sign < metrics.Degrees[j].Sign
	})

	// Terminal signs absorb more transitions than they emit
	for _, d := range metrics.Degrees {
		if d.InDegree > d.OutDegree {
			metrics.Terminals = append(metrics.Terminals, d)
		}
	}
	sort.Slice(metrics.Terminals, func(i, j int) bool {
		if metrics.Terminals[i].InDegree != metrics.Terminals[j].InDegree {
			return metrics.Terminals[i].InDegree > metrics.Terminals[j].InDegree
		}
		return metrics.Terminals[i].Sign < metrics.Terminals[j].Sign
	})
	if len(metrics.Terminals) > terminalLimit {
		metrics.Terminals = metrics.Terminals[:terminalLimit]
	}

	if g.Nodes().Len() > 0 {
		ranks := gonetwork.PageRank(g, pageRankDamping, pageRankTolerance)
		for id, rank := range ranks {
			metrics.PageRank = append(metrics.PageRank, RankEntry{
				Sign: domain.SignID(id),
				Name: s.grammar.NameOf(domain.SignID(id)),
				Rank: rank,
			})
		}
		sort.Slice(metrics.PageRank, func(i, j int) bool {
			if metrics.PageRank[i].Rank != metrics.PageRank[j].Rank {
				return metrics.PageRank[i].Rank > metrics.PageRank[j].Rank
			}
			return metrics.PageRank[i].Sign < metrics.PageRank[j].Sign
		})
	}

	s.log.Debug().
		Int("nodes", metrics.Nodes).
		Int("edges", metrics.Edges).
		Msg("Network analyzed")

	s.eventManager.Emit(events.NetworkAnalyzed, "network", map[string]interface{}{
		"nodes": metrics.Nodes,
		"edges": metrics.Edges,
	})

	return metrics, nil
}
