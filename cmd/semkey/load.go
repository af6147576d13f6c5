package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/semkey"
	"github.com/poiesic/semkey/core"
	"github.com/poiesic/semkey/ingestion"
)

// maxLineSize bounds a single JSONL record. Entity records with many
// features can run long.
const maxLineSize = 1 << 20

func loadCommand(c *cli.Context) error {
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

	pipeline, err := system.NewIngestionPipeline(
		ingestion.WithPoolSize(c.Int("pool-size")),
		ingestion.WithBatchSize(c.Int("batch-size")),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	input, err := openInput(c.String("file"))
	if err != nil {
		return err
	}
	defer input.Close()

	chunkSize := c.Int("chunk-size")
	if chunkSize <= 0 {
		return fmt.Errorf("chunk-size must be greater than 0")
	}

	counts := make(map[ingestion.Status]int)
	lineNo := 0
	chunk := make([]*core.Record, 0, chunkSize)

	flush := func() error {
		if len(chunk) == 0 {
			return nil
		}
		results, err := pipeline.Ingest(ctx, chunk...)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		for _, r := range results {
			counts[r.Status]++
		}
		chunk = chunk[:0]
		return nil
	}

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
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
		chunk = append(chunk, record)
		if len(chunk) == chunkSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	fmt.Printf("Loaded %d records\n", total)
	for _, status := range []ingestion.Status{
		ingestion.StatusIndexed,
		ingestion.StatusSkippedNoName,
		ingestion.StatusInvalid,
		ingestion.StatusEmbedFailed,
		ingestion.StatusWriteFailed,
	} {
		if counts[status] > 0 {
			fmt.Printf("  %s: %d\n", status, counts[status])
		}
	}
	return nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return f, nil
}
