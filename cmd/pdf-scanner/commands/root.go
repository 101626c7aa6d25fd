package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/spherical/pdf-scanner/cmd/pdf-scanner/ui"
	"github.com/spherical/pdf-scanner/internal/config"
	"github.com/spherical/pdf-scanner/internal/observability"
)

var (
	cfgFile    string
	verbose    bool
	noColor    bool
	jsonOutput bool

	cfg    *config.Config
	logger *observability.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pdf-scanner",
	Short: "Extract identifier-named signature crops from PDF documents",
	Long: `pdf-scanner walks PDF documents page by page, locates an identifier on each
page (a 7-digit number in the page text, a QR code, or OCR'd digits), crops the
signature area at the bottom of the page and saves it as <identifier>.jpg.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		ui.InitUI(noColor || jsonOutput, verbose)
		if cmd.Name() == versionCmd.Name() {
			return nil
		}

		_ = godotenv.Load() // Ignore error if .env doesn't exist

		loaded, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded

		level := cfg.Observability.LogLevel
		if verbose {
			level = "debug"
		}
		logger = observability.NewLogger(observability.LogConfig{
			Level:       level,
			Format:      cfg.Observability.LogFormat,
			ServiceName: "pdf-scanner",
			NoColor:     noColor,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print the report as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
