package main

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/poiesic/semkey"
	"github.com/poiesic/semkey/core"
	"github.com/poiesic/semkey/search"
)

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	aiConfig, err := aiConfigFromFlags(c)
	if err != nil {
		return err
	}

	system, err := semkey.Open(ctx, c.String("db"), semkey.WithAIConfig(aiConfig))
	if err != nil {
		return fmt.Errorf("failed to open system: %w", err)
	}
	defer system.Close()

	searcher, err := system.NewSearcher(
		search.WithThreshold(float32(c.Float64("threshold"))),
		search.WithLimit(c.Int("limit")),
	)
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	if c.IsSet("file") {
		return searchFile(ctx, c, searcher)
	}

	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("a name argument or --file is required")
	}

	hits, err := searcher.FindSimilar(ctx, name)
	if err != nil {
		return err
	}
	if len(hits) == 0 {
		fmt.Println("No candidates found")
		return nil
	}
	for _, hit := range hits {
		fmt.Printf("%s\t%.4f\t%s\n", hit.Key, hit.Similarity, hit.Label)
	}
	return nil
}

// searchFile runs every JSONL query record in the file concurrently and
// reports per-query candidates plus aggregate latency figures.
func searchFile(ctx context.Context, c *cli.Context, searcher *search.Searcher) error {
	input, err := openInput(c.String("file"))
	if err != nil {
		return err
	}
	defer input.Close()

	var queries []*core.Record
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		record, err := core.DecodeRecord(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		queries = append(queries, record)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read queries: %w", err)
	}
	if len(queries) == 0 {
		return fmt.Errorf("no query records in input")
	}

	latencies := make([]time.Duration, len(queries))
	results := make([]core.CandidateSet, len(queries))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(c.Int("concurrency"))
	start := time.Now()
	for i, query := range queries {
		group.Go(func() error {
			begin := time.Now()
			candidates, err := searcher.Candidates(groupCtx, query, nil)
			if err != nil {
				return fmt.Errorf("query for %s failed: %w", query.Key, err)
			}
			latencies[i] = time.Since(begin)
			results[i] = candidates
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	for i, query := range queries {
		fmt.Printf("%s:", query.Key)
		if len(results[i]) == 0 {
			fmt.Printf(" no candidates")
		}
		ordered := orderCandidates(results[i])
		for _, cand := range ordered {
			fmt.Printf(" %s(%s,%.3f)", cand.Key, cand.Provenance, cand.Similarity)
		}
		fmt.Println()
	}

	sort.Slice(latencies, func(a, b int) bool { return latencies[a] < latencies[b] })
	var total time.Duration
	for _, d := range latencies {
		total += d
	}
	mean := total / time.Duration(len(latencies))
	p95 := latencies[len(latencies)*95/100]

	fmt.Printf("Queries: %d in %v (mean %v, p95 %v, max %v)\n",
		len(queries), elapsed.Round(time.Millisecond),
		mean.Round(time.Microsecond), p95.Round(time.Microsecond),
		latencies[len(latencies)-1].Round(time.Microsecond))
	return nil
}

// orderCandidates sorts by descending similarity, then key for stability.
func orderCandidates(set core.CandidateSet) []core.Candidate {
	out := make([]core.Candidate, 0, len(set))
	for _, cand := range set {
		out = append(out, cand)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Similarity != out[b].Similarity {
			return out[a].Similarity > out[b].Similarity
		}
		return out[a].Key.String() < out[b].Key.String()
	})
	return out
}
