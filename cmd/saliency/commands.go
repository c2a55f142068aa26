package main

import (
	"github.com/spf13/cobra"
)

func buildSplitCmd(a *app) *cobra.Command {
	var (
		manifest string
		outDir   string
		chart    bool
	)
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Shuffle a manifest into train, val and test lists",
		Long: `Shuffle the entries of a CSV or JSON manifest once and cut them into
train.json, val.json and test.json under --out, using split.train_ratio and
split.val_ratio. The test partition is also dumped to split.test_output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSplit(cmd, a, manifest, outDir, chart)
		},
	}
	cmd.Flags().StringVarP(&manifest, "manifest", "m", "", "CSV or JSON manifest of image, target and text")
	cmd.Flags().StringVarP(&outDir, "out", "o", "splits", "Output directory")
	cmd.Flags().BoolVar(&chart, "chart", false, "Also write a partition size bar chart (split_sizes.png)")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

func buildEncodeCmd(a *app) *cobra.Command {
	var (
		splitPath string
		outPath   string
	)
	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode the texts of a split and save a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEncode(cmd, a, splitPath, outPath)
		},
	}
	cmd.Flags().StringVarP(&splitPath, "split", "s", "", "Split list written by the split command")
	cmd.Flags().StringVarP(&outPath, "out", "o", "encodings.gob", "Snapshot output path")
	_ = cmd.MarkFlagRequired("split")
	return cmd
}

func buildInspectCmd(a *app) *cobra.Command {
	var (
		splitPath    string
		snapshotPath string
		chartPath    string
	)
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Iterate one loader epoch and report batch shapes",
		Long: `Build a loader from a split list (or from an encoding snapshot) and
iterate one epoch, logging the tensor shapes of every batch. With --chart the
mean target saliency of each example is plotted as a histogram.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, a, splitPath, snapshotPath, chartPath)
		},
	}
	cmd.Flags().StringVarP(&splitPath, "split", "s", "", "Split list written by the split command")
	cmd.Flags().StringVar(&snapshotPath, "snapshot", "", "Encoding snapshot; skips the encoder when set")
	cmd.Flags().StringVar(&chartPath, "chart", "", "Write a mean target saliency histogram to this PNG")
	cmd.MarkFlagsOneRequired("split", "snapshot")
	return cmd
}
