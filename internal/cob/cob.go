// Package cob provides the gene co-expression network (COB) and its
// locality metric: per-gene local vs global significant-interaction degree.
package cob

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/inodb/gwas-locality/internal/locality"
)

// DefaultSigEdgeZScore is the edge z-score at or above which an edge counts
// as a significant interaction.
const DefaultSigEdgeZScore = 3.0

// Gene is a network gene with its genomic coordinates.
type Gene struct {
	ID    string
	Chrom string
	Start int64 // 1-based
	End   int64 // 1-based, inclusive
}

// COB is an in-memory co-expression network. Edges carry z-scores; the
// significance threshold is applied at query time so it can be overridden
// per run.
type COB struct {
	name   string
	sigZ   float64
	genes  map[string]Gene
	adj    map[string]map[string]float64
	logger *zap.Logger
}

// New creates an empty network with the default significance threshold.
func New(name string) *COB {
	return &COB{
		name:   name,
		sigZ:   DefaultSigEdgeZScore,
		genes:  make(map[string]Gene),
		adj:    make(map[string]map[string]float64),
		logger: zap.NewNop(),
	}
}

// Name returns the network identifier.
func (c *COB) Name() string { return c.name }

// SetLogger sets the logger for warning messages.
func (c *COB) SetLogger(l *zap.Logger) { c.logger = l }

// SetSigEdgeZScore overrides the significant-edge threshold.
func (c *COB) SetSigEdgeZScore(z float64) { c.sigZ = z }

// SigEdgeZScore returns the current significant-edge threshold.
func (c *COB) SigEdgeZScore() float64 { return c.sigZ }

// AddGene registers a gene in the network.
func (c *COB) AddGene(g Gene) {
	c.genes[g.ID] = g
	if _, ok := c.adj[g.ID]; !ok {
		c.adj[g.ID] = make(map[string]float64)
	}
}

// AddEdge records an undirected scored edge between two genes.
func (c *COB) AddEdge(a, b string, score float64) error {
	if _, ok := c.genes[a]; !ok {
		return fmt.Errorf("add edge: unknown gene %q", a)
	}
	if _, ok := c.genes[b]; !ok {
		return fmt.Errorf("add edge: unknown gene %q", b)
	}
	c.adj[a][b] = score
	c.adj[b][a] = score
	return nil
}

// NumGenes returns the number of genes in the network.
func (c *COB) NumGenes() int { return len(c.genes) }

// HasGene reports whether the network contains the gene.
func (c *COB) HasGene(id string) bool {
	_, ok := c.genes[id]
	return ok
}

// Genes returns all genes ordered by chromosome then start position.
func (c *COB) Genes() []Gene {
	out := make([]Gene, 0, len(c.genes))
	for _, g := range c.genes {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Chrom != out[j].Chrom {
			return out[i].Chrom < out[j].Chrom
		}
		if out[i].Start != out[j].Start {
			return out[i].Start < out[j].Start
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// GlobalDegree returns the number of significant interactions a gene has
// anywhere in the network.
func (c *COB) GlobalDegree(id string) int {
	n := 0
	for _, score := range c.adj[id] {
		if score >= c.sigZ {
			n++
		}
	}
	return n
}

// Locality computes, for each candidate gene present in the network, its
// local (within the candidate set) and global significant-interaction
// degree. With includeRegression the table also carries an OLS trend fit on
// this population. Candidate genes absent from the network are skipped.
func (c *COB) Locality(candidates []string, includeRegression bool) (locality.Table, error) {
	inSet := make(map[string]bool, len(candidates))
	for _, id := range candidates {
		if c.HasGene(id) {
			inSet[id] = true
		}
	}

	t := make(locality.Table, 0, len(inSet))
	seen := make(map[string]bool, len(inSet))
	for _, id := range candidates {
		if !inSet[id] || seen[id] {
			continue
		}
		seen[id] = true
		local, global := 0, 0
		for neighbor, score := range c.adj[id] {
			if score < c.sigZ {
				continue
			}
			global++
			if inSet[neighbor] {
				local++
			}
		}
		t = append(t, locality.Record{
			Gene:   id,
			Local:  float64(local),
			Global: float64(global),
		})
	}

	if includeRegression {
		if err := locality.FitTrend(t); err != nil {
			return nil, fmt.Errorf("locality regression: %w", err)
		}
	}
	return t, nil
}
