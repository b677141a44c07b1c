package analysis

import (
	"math/rand"
	"runtime"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/gwas-locality/internal/gwas"
	"github.com/inodb/gwas-locality/internal/locality"
)

// bootResult holds one bootstrap iteration's locality table.
type bootResult struct {
	Seq   int
	Table locality.Table
	Err   error
}

// bootstrapTables generates n shape-matched null locality tables using a
// pool of workers and concatenates them in iteration order. Iteration k
// draws from its own RNG seeded with baseSeed+k, so the output is identical
// regardless of worker count or scheduling.
func (d *Driver) bootstrapTables(term *gwas.Term, loci []gwas.Locus, prefix string, cfg Config, baseSeed int64) (locality.Table, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > cfg.NumBootstraps {
		workers = cfg.NumBootstraps
	}

	jobs := make(chan int, cfg.NumBootstraps)
	for k := 0; k < cfg.NumBootstraps; k++ {
		jobs <- k
	}
	close(jobs)

	results := make(chan bootResult, 2*workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for k := range jobs {
				rng := rand.New(rand.NewSource(baseSeed + int64(k)))
				label := prefix + strconv.Itoa(k)
				genes, skipped := d.ref.BootstrapCandidateGenes(loci, cfg.CandidateFlankLimit, rng)
				if skipped > 0 {
					d.logger.Warn("bootstrap sampling exhausted, set smaller than empirical shape",
						zap.String("term", term.ID),
						zap.String("iter", label),
						zap.Int("skipped_loci", skipped))
				}
				tbl, err := d.cob.Locality(genes, false)
				if err == nil {
					for i := range tbl {
						tbl[i].Term = term.ID
						tbl[i].Iter = label
					}
				}
				results <- bootResult{Seq: k, Table: tbl, Err: err}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect in sequence order: buffer out-of-order results and emit as
	// soon as the next expected iteration is available.
	pending := make(map[int]bootResult)
	nextSeq := 0
	var out locality.Table
	for r := range results {
		pending[r.Seq] = r
		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if rr.Err != nil {
				for range results {
				}
				return nil, rr.Err
			}
			out = append(out, rr.Table...)
		}
	}
	return out, nil
}
