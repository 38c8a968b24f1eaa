// Package main provides the vcfreport command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/genomelab/vcfreport/internal/catalog"
	"github.com/genomelab/vcfreport/internal/known"
	"github.com/genomelab/vcfreport/internal/pipeline"
	"github.com/genomelab/vcfreport/internal/report"
	"github.com/genomelab/vcfreport/internal/transcripts"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(os.Stderr, "Hint: check that the input file paths are correct")
		}
		os.Exit(1)
	}
}

type reportOptions struct {
	output      string
	transcripts string
	strictness  string
	bedFile     string
	bedFolder   string
	knownPath   string
	configPath  string
	listFields  bool
	passOnly    bool
	workers     int
	verbose     bool
}

func newRootCmd() *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "vcfreport [flags] <input.vcf>",
		Short: "Convert a VCF file into a tab-delimited variant report",
		Long: `vcfreport parses a VCF file and produces a tab-delimited variant report,
optionally enriched with preferred-transcript matches, known-variant
classifications and BED-region filtering.

Classification key for known variants:
  0 Artifact, 1 Benign, 2 Likely benign, 3 VUS,
  4 Likely pathogenic, 5 Pathogenic`,
		Example: `  # Full report with all fields declared in the VCF
  vcfreport sample.vcf

  # List the available config fields, reusable as a config file
  vcfreport -l sample.vcf > config.txt

  # Configured report with preferred transcripts and a gene panel
  vcfreport -c config.txt -t preferred.txt -b panel.bed sample.vcf`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initViper(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(args[0], opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "O", "", "Folder where output reports are saved (default: current directory)")
	flags.StringVarP(&opts.transcripts, "transcripts", "t", "", "Preferred transcripts file (tab-separated, transcript in second column)")
	flags.StringVarP(&opts.strictness, "transcript-strictness", "T", "", "Transcript match strictness: high or low (default: low)")
	flags.StringVarP(&opts.bedFile, "bed", "b", "", "Single BED file to filter the report against")
	flags.StringVarP(&opts.bedFolder, "bed-folder", "B", "", "Folder of BED files, one derived report per file")
	flags.StringVarP(&opts.knownPath, "known-variants", "k", "", "Known variants VCF with a Classification INFO annotation")
	flags.StringVarP(&opts.configPath, "config", "c", "", "Config file selecting and ordering report columns")
	flags.BoolVarP(&opts.listFields, "config-list", "l", false, "List all available config fields, then exit")
	flags.BoolVarP(&opts.passOnly, "filter-non-pass", "F", false, "Drop variants whose FILTER status is not PASS")
	flags.IntVar(&opts.workers, "workers", 0, "Worker count for BED-folder processing (default: number of CPUs)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.MarkFlagsMutuallyExclusive("bed", "bed-folder")

	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initViper wires defaults, the optional ~/.vcfreport.yaml file and
// VCFREPORT_* environment variables under the command's flags.
func initViper(cmd *cobra.Command) error {
	viper.SetDefault("report.output", ".")
	viper.SetDefault("report.strictness", string(transcripts.StrictnessLow))
	viper.SetDefault("report.workers", 0)

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".vcfreport")
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return fmt.Errorf("read config file: %w", err)
			}
		}
	}

	viper.SetEnvPrefix("VCFREPORT")
	viper.AutomaticEnv()

	flags := cmd.Flags()
	for flag, key := range map[string]string{
		"output":                "report.output",
		"transcript-strictness": "report.strictness",
		"workers":               "report.workers",
	} {
		if f := flags.Lookup(flag); f != nil {
			if err := viper.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	return nil
}

func runReport(inputPath string, opts *reportOptions) error {
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("running vcfreport",
		zap.String("input", inputPath),
		zap.String("version", version))

	cat, err := catalog.Load(inputPath)
	if err != nil {
		return err
	}
	logger.Info("loaded vcf",
		zap.Int("records", len(cat.Variants)),
		zap.Int("fields", len(cat.Fields())))

	// List mode bypasses report building entirely.
	if opts.listFields {
		return cat.List(os.Stdout)
	}

	a := pipeline.New(cat)
	a.SetLogger(logger)
	a.ExcludeNonPass = opts.passOnly
	a.Workers = viper.GetInt("report.workers")

	strictness, err := transcripts.ParseStrictness(viper.GetString("report.strictness"))
	if err != nil {
		return err
	}
	a.Strictness = strictness

	if opts.configPath != "" {
		cfg, err := report.LoadConfig(opts.configPath)
		if err != nil {
			return err
		}
		a.Config = cfg
	}

	if opts.transcripts != "" {
		prefs, err := transcripts.Load(opts.transcripts)
		if err != nil {
			return err
		}
		logger.Info("loaded preferred transcripts", zap.Int("genes", prefs.Len()))
		a.Preferred = prefs
	}

	if opts.knownPath != "" {
		idx, err := known.Load(opts.knownPath)
		if err != nil {
			return err
		}
		logger.Info("loaded known variants", zap.Int("indexed", idx.Len()))
		a.Known = idx
	}

	switch {
	case opts.bedFile != "":
		a.Bed = pipeline.SingleBed(opts.bedFile)
	case opts.bedFolder != "":
		a.Bed = pipeline.FolderBed(opts.bedFolder)
	default:
		a.Bed = pipeline.NoBed()
	}

	outDir := viper.GetString("report.output")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if err := a.Run(outDir, pipeline.BaseReportName(inputPath)); err != nil {
		return err
	}

	logger.Info("vcfreport completed")
	return nil
}

// newLogger builds a console logger writing to stderr so report data on
// stdout stays clean.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
