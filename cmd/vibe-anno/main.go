// Package main provides the vibe-anno command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/vibe-anno/internal/annotate"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Configuration keys.
const (
	keyVerbose          = "verbose"
	keyTranscriptsDir   = "transcripts.dir"
	keyStorePath        = "store.path"
	keyWorkers          = "annotate.workers"
	keySpliceThreshold  = "annotate.splice_threshold"
	keyNearGeneDistance = "annotate.neargene"
	keyChromX           = "chromosomes.x"
	keyChromY           = "chromosomes.y"
	keyChromMT          = "chromosomes.mt"
)

// errUsage marks command-line mistakes, which exit with ExitUsage.
var errUsage = errors.New("usage error")

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, errUsage) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vibe-anno",
		Short: "Gene-based variant classification",
		Long: `vibe-anno classifies genomic variants against UCSC knownGene transcripts
and reports one merged annotation per variant.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	viper.BindPFlag(keyVerbose, root.PersistentFlags().Lookup("verbose"))

	root.AddCommand(newAnnotateCmd())
	root.AddCommand(newLookupCmd())
	root.AddCommand(newConvertCmd())
	root.AddCommand(newDownloadCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vibe-anno version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig reads ~/.vibe-anno.yaml and VIBE_ANNO_* environment variables.
// A missing config file is not an error.
func initConfig() error {
	setDefaults()

	viper.SetConfigName(".vibe-anno")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix("VIBE_ANNO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

func setDefaults() {
	viper.SetDefault(keyTranscriptsDir, defaultDataDir("hg19"))
	viper.SetDefault(keyWorkers, 0)
	viper.SetDefault(keySpliceThreshold, annotate.DefaultSpliceThreshold)
	viper.SetDefault(keyNearGeneDistance, annotate.DefaultNearGeneDistance)
	viper.SetDefault(keyChromX, annotate.DefaultChromX)
	viper.SetDefault(keyChromY, annotate.DefaultChromY)
	viper.SetDefault(keyChromMT, annotate.DefaultChromMT)
}

// defaultDataDir returns ~/.vibe-anno/<assembly>.
func defaultDataDir(assembly string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".vibe-anno", strings.ToLower(assembly))
}

// classifierConfig builds the classifier configuration from viper.
func classifierConfig() (annotate.Config, error) {
	cfg := annotate.Config{
		SpliceThreshold:  viper.GetInt64(keySpliceThreshold),
		NearGeneDistance: viper.GetInt64(keyNearGeneDistance),
		ChromX:           byte(viper.GetUint(keyChromX)),
		ChromY:           byte(viper.GetUint(keyChromY)),
		ChromMT:          byte(viper.GetUint(keyChromMT)),
	}
	if cfg.SpliceThreshold < 0 {
		return cfg, fmt.Errorf("%s must not be negative", keySpliceThreshold)
	}
	if cfg.NearGeneDistance < 0 {
		return cfg, fmt.Errorf("%s must not be negative", keyNearGeneDistance)
	}
	if cfg.ChromX < 2 || cfg.ChromY < 2 || cfg.ChromMT < 2 ||
		cfg.ChromX == cfg.ChromY || cfg.ChromX == cfg.ChromMT || cfg.ChromY == cfg.ChromMT {
		return cfg, fmt.Errorf("chromosome codes x=%d y=%d mt=%d must be distinct and at least 2",
			cfg.ChromX, cfg.ChromY, cfg.ChromMT)
	}
	return cfg, nil
}

// newLogger creates a console logger on stderr; debug level with --verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		cfg.DisableCaller = true
	}
	return cfg.Build()
}

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errUsage, fmt.Sprintf(format, args...))
}
