package main

// Example command that builds a saliency loader from a manifest and converts
// one epoch of batches into gomlx tensors.
//
// Texts are encoded once with the offline hash encoder, so no model server
// is needed. Images and targets are only read when a batch is built.
//
// Usage:
//   go run ./datasets/example -manifest data/manifest.csv
//
// The manifest is a CSV with image, target and text columns, or a JSON list
// written by "saliency split".

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/Noofbiz/saliency/datasets"
	"github.com/Noofbiz/saliency/encoder"
)

func main() {
	manifest := flag.String("manifest", "data/manifest.csv", "CSV or JSON manifest")
	batchSize := flag.Int("batch", 8, "batch size")
	size := flag.Int("size", 224, "resize images and targets to size x size")
	flag.Parse()

	entries, err := datasets.LoadManifest(*manifest)
	if err != nil {
		log.Fatalf("failed to load manifest: %v", err)
	}
	fmt.Printf("Loaded %d entries from %s\n", len(entries), *manifest)

	enc, err := encoder.NewHash(512)
	if err != nil {
		log.Fatalf("failed to create encoder: %v", err)
	}

	loader, err := datasets.NewLoader(context.Background(), entries, enc, *batchSize,
		datasets.WithSeed(1),
		datasets.WithDatasetOptions(datasets.WithTransform(datasets.Resize(*size, *size))))
	if err != nil {
		log.Fatalf("failed to create loader: %v", err)
	}
	fmt.Printf("Batches per epoch: %d\n", loader.NumBatches())

	for i := 0; ; i++ {
		batch, err := loader.NextBatch()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatalf("failed to build batch %d: %v", i, err)
		}

		images, targets, texts, err := batch.ToGomlxTensors()
		if err != nil {
			log.Fatalf("failed to convert batch %d to gomlx tensors: %v", i, err)
		}
		fmt.Printf("batch %d: images=%s targets=%s texts=%s\n",
			i, images.Shape(), targets.Shape(), texts.Shape())
	}
}
