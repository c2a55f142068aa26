package main

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"path/filepath"

	"github.com/Noofbiz/saliency/datasets"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runSplit handles the split command.
func runSplit(cmd *cobra.Command, a *app, manifest, outDir string, chart bool) error {
	entries, err := datasets.LoadManifest(manifest)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	var rng *rand.Rand
	if a.cfg.Split.Seed != 0 {
		rng = rand.New(rand.NewSource(a.cfg.Split.Seed))
	}
	parts, err := datasets.Split(entries, a.cfg.Split.TrainRatio, a.cfg.Split.ValRatio, rng)
	if err != nil {
		return err
	}

	outputs := []struct {
		name    string
		entries []datasets.Entry
	}{
		{"train.json", parts.Train},
		{"val.json", parts.Val},
		{"test.json", parts.Test},
	}
	for _, o := range outputs {
		if err := datasets.WriteEntriesJSON(filepath.Join(outDir, o.name), o.entries); err != nil {
			return err
		}
	}
	if a.cfg.Split.TestOutput != "" {
		if err := datasets.WriteEntriesJSON(resolveOutput(outDir, a.cfg.Split.TestOutput), parts.Test); err != nil {
			return err
		}
	}

	train, val, test := parts.Sizes()
	a.logger.Info("split manifest",
		zap.String("manifest", manifest),
		zap.Int("train", train),
		zap.Int("val", val),
		zap.Int("test", test))

	if chart {
		chartPath := filepath.Join(outDir, "split_sizes.png")
		if err := plotSplitSizes(chartPath, parts); err != nil {
			return fmt.Errorf("failed to plot split sizes: %w", err)
		}
		a.logger.Info("wrote split chart", zap.String("path", chartPath))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "train=%d val=%d test=%d\n", train, val, test)
	return nil
}

// runEncode handles the encode command.
func runEncode(cmd *cobra.Command, a *app, splitPath, outPath string) error {
	entries, err := datasets.ReadEntriesJSON(splitPath)
	if err != nil {
		return err
	}
	enc, closeEnc, err := newEncoder(cmd.Context(), a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer closeEnc()

	ds, err := datasets.NewSaliencyDataset(cmd.Context(), entries, enc, a.datasetOptions()...)
	if err != nil {
		return err
	}
	if err := ds.SaveEncodings(outPath); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "encoded %d texts with %s (dim %d) into %s\n",
		ds.Len(), ds.EncoderName(), ds.Dimension(), outPath)
	return nil
}

// runInspect handles the inspect command.
func runInspect(cmd *cobra.Command, a *app, splitPath, snapshotPath, chartPath string) error {
	loader, err := a.buildLoader(cmd, splitPath, snapshotPath)
	if err != nil {
		return err
	}

	var (
		means    []float64
		batches  int
		examples int
	)
	for {
		batch, err := loader.NextBatch()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("batch %d: %w", batches, err)
		}
		images, targets, texts, err := batch.ToGomlxTensors()
		if err != nil {
			return fmt.Errorf("batch %d: %w", batches, err)
		}
		a.logger.Info("batch",
			zap.Int("batch", batches),
			zap.String("images", images.Shape().String()),
			zap.String("targets", targets.Shape().String()),
			zap.String("texts", texts.Shape().String()))

		means = append(means, meanTargets(batch)...)
		batches++
		examples += batch.BatchSize
	}

	if chartPath != "" {
		if err := plotTargetHistogram(chartPath, means); err != nil {
			return fmt.Errorf("failed to plot target histogram: %w", err)
		}
		a.logger.Info("wrote target histogram", zap.String("path", chartPath))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "batches=%d examples=%d expected_batches=%d\n",
		batches, examples, loader.NumBatches())
	return nil
}

func (a *app) buildLoader(cmd *cobra.Command, splitPath, snapshotPath string) (*datasets.Loader, error) {
	lc := a.cfg.Loader
	loaderOpts := []datasets.LoaderOption{
		datasets.WithShuffle(lc.Shuffle),
		datasets.WithDropLast(lc.DropLast),
		datasets.WithSeed(lc.Seed),
		datasets.WithLoaderLogger(a.logger),
	}

	if snapshotPath != "" {
		ds, err := datasets.LoadSaliencyDataset(snapshotPath, a.datasetOptions()...)
		if err != nil {
			return nil, err
		}
		return datasets.NewLoaderFromDataset(ds, lc.BatchSize, loaderOpts...)
	}

	entries, err := datasets.ReadEntriesJSON(splitPath)
	if err != nil {
		return nil, err
	}
	enc, closeEnc, err := newEncoder(cmd.Context(), a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	defer closeEnc()

	loaderOpts = append(loaderOpts, datasets.WithDatasetOptions(a.datasetOptions()...))
	return datasets.NewLoader(cmd.Context(), entries, enc, lc.BatchSize, loaderOpts...)
}

func (a *app) datasetOptions() []datasets.Option {
	return []datasets.Option{
		datasets.WithTransform(a.cfg.Dataset.Transform()),
		datasets.WithSource(a.source),
		datasets.WithLogger(a.logger),
	}
}

// meanTargets returns the mean saliency of every target in the batch.
func meanTargets(b *datasets.SaliencyBatchFlat) []float64 {
	pixels := b.Height * b.Width
	if pixels == 0 {
		return nil
	}
	means := make([]float64, b.BatchSize)
	for i := range means {
		var sum float64
		for _, v := range b.Targets[i*pixels : (i+1)*pixels] {
			sum += float64(v)
		}
		means[i] = sum / float64(pixels)
	}
	return means
}

// resolveOutput places relative paths under dir.
func resolveOutput(dir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
