// Package graph maintains funding-source associations between wallets
// and derives connected-component clusters from them.
package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/Solmidey/polymarket-insider/internal/domain"
	"github.com/Solmidey/polymarket-insider/internal/storage"
)

// Graph answers wallet-relationship queries over the funding edge store.
// No state is cached between calls; every query rehydrates from storage.
type Graph struct {
	edges storage.FundingEdgeStore
}

// New creates a Graph over the given edge store.
func New(edges storage.FundingEdgeStore) *Graph {
	return &Graph{edges: edges}
}

// RecordFunding upserts the (wallet, source) edge. Funding attribution
// is best-effort: malformed input is dropped silently.
func (g *Graph) RecordFunding(ctx context.Context, wallet, source string, amountUSD float64, ts int64) error {
	if wallet == "" || source == "" {
		return nil
	}

	err := g.edges.Upsert(ctx, &domain.FundingEdge{
		Wallet:    wallet,
		Source:    source,
		AmountUSD: amountUSD,
		Timestamp: ts,
	})
	if err != nil {
		return fmt.Errorf("record funding edge: %w", err)
	}
	return nil
}

// Related reports whether two wallets share at least one funding source.
func (g *Graph) Related(ctx context.Context, walletA, walletB string) (bool, error) {
	if walletA == "" || walletB == "" || walletA == walletB {
		return false, nil
	}

	sourcesA, err := g.edges.SourcesByWallet(ctx, walletA)
	if err != nil {
		return false, fmt.Errorf("sources for %s: %w", walletA, err)
	}
	if len(sourcesA) == 0 {
		return false, nil
	}

	sourcesB, err := g.edges.SourcesByWallet(ctx, walletB)
	if err != nil {
		return false, fmt.Errorf("sources for %s: %w", walletB, err)
	}

	set := make(map[string]struct{}, len(sourcesA))
	for _, s := range sourcesA {
		set[s] = struct{}{}
	}
	for _, s := range sourcesB {
		if _, ok := set[s]; ok {
			return true, nil
		}
	}
	return false, nil
}

// Clusters recomputes connected components of the induced wallet graph
// and returns those with at least minSize members. Components and their
// members are sorted, so output is deterministic by content. Wallets
// with no funding edge never appear.
func (g *Graph) Clusters(ctx context.Context, minSize int) ([][]string, error) {
	if minSize < 2 {
		minSize = 2
	}

	edges, err := g.edges.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load funding edges: %w", err)
	}

	// source -> wallets sharing it
	bySource := make(map[string][]string)
	for _, e := range edges {
		bySource[e.Source] = append(bySource[e.Source], e.Wallet)
	}

	adjacency := make(map[string]map[string]struct{})
	addEdge := func(a, b string) {
		if adjacency[a] == nil {
			adjacency[a] = make(map[string]struct{})
		}
		adjacency[a][b] = struct{}{}
	}
	for _, wallets := range bySource {
		for i := 0; i < len(wallets); i++ {
			for j := i + 1; j < len(wallets); j++ {
				if wallets[i] == wallets[j] {
					continue
				}
				addEdge(wallets[i], wallets[j])
				addEdge(wallets[j], wallets[i])
			}
		}
		// A source with a single wallet still anchors that wallet in the
		// graph, but a singleton component is filtered by minSize below.
		if len(wallets) == 1 {
			if adjacency[wallets[0]] == nil {
				adjacency[wallets[0]] = make(map[string]struct{})
			}
		}
	}

	// Iterate wallets in sorted order so component discovery is stable.
	wallets := make([]string, 0, len(adjacency))
	for w := range adjacency {
		wallets = append(wallets, w)
	}
	sort.Strings(wallets)

	visited := make(map[string]struct{}, len(wallets))
	var clusters [][]string

	for _, start := range wallets {
		if _, done := visited[start]; done {
			continue
		}

		// Explicit stack traversal keeps memory bounded on large graphs.
		stack := []string{start}
		visited[start] = struct{}{}
		var component []string

		for len(stack) > 0 {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, w)

			for neighbor := range adjacency[w] {
				if _, done := visited[neighbor]; done {
					continue
				}
				visited[neighbor] = struct{}{}
				stack = append(stack, neighbor)
			}
		}

		if len(component) >= minSize {
			sort.Strings(component)
			clusters = append(clusters, component)
		}
	}

	sort.Slice(clusters, func(i, j int) bool {
		return clusters[i][0] < clusters[j][0]
	})

	return clusters, nil
}
