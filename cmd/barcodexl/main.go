// Package main provides the CLI entry point for barcodexl.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/ukaji3/barcodexl-go/pkg/barcodexl"
	"github.com/ukaji3/barcodexl-go/pkg/barcodexl/parser"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	configPath    string
	sourceColumn  string
	maxRows       int
	imagesDir     string
	outputDir     string
	exportDirName string
	code128       bool
	ean13         bool
	verbose       bool
	pretty        bool

	logger *zap.Logger
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "barcodexl",
		Short: "Annotate Excel rows with barcode images",
		Long: `barcodexl reads product codes from Excel files, renders Code128 and/or
EAN13 barcodes for each row and writes workbooks with the images embedded,
split every --rows rows.

The image directory is wiped at the start of every run.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			config.Encoding = "console"
			config.Sampling = nil
			if verbose {
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
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	flags.StringVar(&sourceColumn, "column", "", "Column holding the codes (default: cod_barras)")
	flags.IntVarP(&maxRows, "rows", "r", 0, "Maximum rows per output workbook (default: 5000)")
	flags.StringVar(&imagesDir, "images-dir", "", "Image directory, wiped on each run (default: barcodes)")
	flags.BoolVar(&code128, "code128", false, "Generate Code128 images")
	flags.BoolVar(&ean13, "ean13", true, "Generate EAN13 images")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	fileCmd := &cobra.Command{
		Use:   "file [input.xlsx]",
		Short: "Process a single workbook",
		Args:  cobra.ExactArgs(1),
		RunE:  runFile,
	}
	fileCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for output workbooks (default: .)")

	dirCmd := &cobra.Command{
		Use:   "dir [directory]",
		Short: "Process every workbook in a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runDir,
	}
	dirCmd.Flags().StringVar(&exportDirName, "export-dir", "", "Export folder created inside the directory (default: Exportación)")

	inspectCmd := &cobra.Command{
		Use:   "inspect [output.xlsx]",
		Short: "List the pictures embedded in a workbook as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runInspect,
	}
	inspectCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	rootCmd.AddCommand(fileCmd, dirCmd, inspectCmd)
	return rootCmd
}

// buildConfig loads the config file, then applies flags the user set.
func buildConfig(cmd *cobra.Command) (barcodexl.Config, error) {
	cfg := barcodexl.DefaultConfig()
	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return cfg, fmt.Errorf("%w: config %s", barcodexl.ErrFileNotFound, configPath)
		}
		var err error
		if cfg, err = barcodexl.LoadConfig(configPath); err != nil {
			return cfg, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("column") {
		cfg.SourceColumn = sourceColumn
	}
	if flags.Changed("rows") {
		cfg.MaxRowsPerFile = maxRows
	}
	if flags.Changed("images-dir") {
		cfg.ImagesDir = imagesDir
	}
	if flags.Changed("code128") {
		cfg.Code128.Enabled = code128
	}
	if flags.Changed("ean13") {
		cfg.EAN13.Enabled = ean13
	}
	if f := flags.Lookup("output-dir"); f != nil && f.Changed {
		cfg.OutputDir = outputDir
	}
	if f := flags.Lookup("export-dir"); f != nil && f.Changed {
		cfg.ExportDirName = exportDirName
	}
	return cfg, nil
}

func newPipeline(cmd *cobra.Command) (*barcodexl.Pipeline, error) {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}
	return barcodexl.New(cfg, barcodexl.WithLogger(logger))
}

func runFile(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(cmd)
	if err != nil {
		return err
	}

	sum, err := p.RunFile(args[0])
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	printSummary(cmd.OutOrStdout(), sum)
	return nil
}

func runDir(cmd *cobra.Command, args []string) error {
	p, err := newPipeline(cmd)
	if err != nil {
		return err
	}

	sum, err := p.RunDir(args[0])
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	printSummary(cmd.OutOrStdout(), sum)
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	pictures, err := parser.ExtractPictures(inputPath)
	if err != nil {
		return fmt.Errorf("inspection failed: %w", err)
	}

	var data []byte
	if pretty {
		data, err = json.MarshalIndent(pictures, "", "  ")
	} else {
		data, err = json.Marshal(pictures)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func printSummary(w io.Writer, sum *barcodexl.Summary) {
	fmt.Fprintln(w, "--------------------------------")
	if sum.Mode == barcodexl.ModeDir {
		fmt.Fprintf(w, "Files processed: %d (skipped: %d)\n", sum.FilesProcessed, sum.FilesSkipped)
	}
	fmt.Fprintf(w, "Workbooks written: %d\n", sum.FilesWritten)
	if sum.BlocksFailed > 0 {
		fmt.Fprintf(w, "Blocks failed: %d\n", sum.BlocksFailed)
	}
	fmt.Fprintf(w, "Rows: %d, images: %d, skipped rows: %d, skipped barcodes: %d\n",
		sum.Rows, sum.Images, sum.SkippedRows, sum.SkippedImages)
	for _, out := range sum.Outputs {
		fmt.Fprintf(w, "  %s\n", out)
	}
	fmt.Fprintf(w, "Total time: %s\n", sum.ElapsedText())
}
