// Command saliency prepares text-conditioned saliency datasets.
//
// Split a manifest into train/val/test lists:
//
//	saliency split --manifest data/manifest.csv --out data/splits --chart
//
// Encode the texts of a split once and snapshot them:
//
//	saliency encode --split data/splits/train.json --out data/train.gob
//
// Iterate one loader epoch and report batch shapes:
//
//	saliency inspect --split data/splits/train.json --snapshot data/train.gob
//
// The encoder API key can be given with SALIENCY_ENCODER_API_KEY.
package main

import (
	"fmt"
	"os"

	"github.com/Noofbiz/saliency/config"
	"github.com/Noofbiz/saliency/datasets"
	"github.com/Noofbiz/saliency/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand needs after flags are parsed.
type app struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *zap.Logger
	source datasets.Source
}

func main() {
	a := &app{}
	if err := buildRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
func buildRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "saliency",
		Short: "Prepare image, saliency target and text datasets",
		Long: `Split manifests of (image, saliency target, text) triples, encode
their texts with a vision-language text encoder and batch them for training.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	rootCmd.AddCommand(
		buildSplitCmd(a),
		buildEncodeCmd(a),
		buildInspectCmd(a),
	)
	return rootCmd
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	source, err := newSource(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to configure storage: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	a.source = source
	return nil
}
