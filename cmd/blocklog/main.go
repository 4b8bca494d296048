package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/abyssdigger/blocklog"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"
)

const (
	defaultBatchSize = 100
	maxLineSize      = 1 << 20
)

type options struct {
	configPath string
	batchSize  int
	verbose    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	var logger *zap.Logger

	rootCmd := &cobra.Command{
		Use:   "blocklog [files...]",
		Short: "Render newline-delimited JSON log records as indented console text",
		Long: `Reads log records (one JSON object per line) from the given files or
stdin and prints them with level/time prefixes. Bodies starting with ">>"
open an indented block, bodies starting with "<<" close it.

Records are filtered by the "levels", "categories" and "except" settings
of the config file. Files ending in .zst or .gz are decompressed.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewDevelopmentConfig()
			config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			if opts.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			return runRender(cmd, args, cfg, opts.batchSize, logger)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a TOML or YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug diagnostics")
	rootCmd.Flags().IntVar(&opts.batchSize, "batch", defaultBatchSize, "Records exported per batch")

	checkCmd := &cobra.Command{
		Use:   "check-config",
		Short: "Validate the config file and print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			buf, err := cfg.SerializeConfig()
			if err != nil {
				return err
			}
			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	rootCmd.AddCommand(checkCmd)
	return rootCmd
}

func loadConfig(path string) (*blocklog.Config, error) {
	if path == "" {
		return blocklog.DefaultConfig(), nil
	}
	return blocklog.LoadConfig(path)
}

// runRender feeds every input through one renderer so blocks may span files
// and batches.
func runRender(cmd *cobra.Command, args []string, cfg *blocklog.Config, batchSize int, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	fallback := &zapio.Writer{Log: logger, Level: zapcore.WarnLevel}
	defer fallback.Close()

	renderer, err := blocklog.NewFromConfig(cfg, cmd.OutOrStdout(), fallback)
	if err != nil {
		return err
	}

	inputs := args
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	failed := 0
	for _, name := range inputs {
		n, err := renderInput(cmd, name, renderer, batchSize, logger)
		failed += n
		if err != nil {
			return err
		}
	}
	if depth := renderer.Depth(); depth > 0 {
		logger.Warn("input ended with open blocks", zap.Int("depth", depth))
	}
	if failed > 0 {
		return fmt.Errorf("%d record(s) could not be rendered", failed)
	}
	return nil
}

// Returns the number of records that failed to decode or render.
func renderInput(cmd *cobra.Command, name string, renderer *blocklog.Renderer, batchSize int, logger *zap.Logger) (failed int, err error) {
	in, err := openInput(name, cmd.InOrStdin())
	if err != nil {
		return 0, err
	}
	defer in.Close()
	logger.Debug("rendering input", zap.String("input", name))

	decoder := newRecordDecoder()
	batch := make([]blocklog.Record, 0, batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := renderer.Export(batch); err != nil {
			failed += countErrors(err)
		}
		batch = batch[:0]
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		rec, err := decoder.Decode(line)
		if err != nil {
			logger.Warn("skipping record", zap.String("input", name), zap.Int("line", lineNo), zap.Error(err))
			failed++
			continue
		}
		batch = append(batch, rec)
		if len(batch) >= batchSize {
			flush()
		}
	}
	flush()
	if err := scanner.Err(); err != nil {
		return failed, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return failed, nil
}

func countErrors(err error) int {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return len(joined.Unwrap())
	}
	return 1
}
