/*
Copyright © 2026 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fulmenhq/manifold/internal/download"
	"github.com/fulmenhq/manifold/internal/flows"
	"github.com/fulmenhq/manifold/internal/forge"
	"github.com/fulmenhq/manifold/pkg/buildinfo"
	"github.com/fulmenhq/manifold/pkg/config"
	"github.com/fulmenhq/manifold/pkg/exitcode"
	"github.com/fulmenhq/manifold/pkg/logger"
	"github.com/fulmenhq/manifold/pkg/manifest"
	"github.com/fulmenhq/manifold/pkg/schema"
)

// newRootCommand creates a fresh root command instance.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manifold",
		Short: "Author, update, and submit package manifests",
		Long: `Manifold creates and maintains package manifests for a community manifest
repository. It downloads installers, detects their metadata, reconciles it
with existing manifests, validates against the manifest schemas, and opens
pull requests.

Examples:
   manifold new https://example.com/app-1.0.exe --id Contoso.App --version 1.0
   manifold update Contoso.App --version 1.1 --submit
   manifold locale add Contoso.App --locale fr-FR
   manifold submit ./manifests/c/Contoso/App/1.1
   manifold token validate`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	// Accept underscore spellings of dashed flag names
	cmd.PersistentFlags().SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	// Add global flags
	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String("format", "", "Manifest serialization format (yaml|json)")
	cmd.PersistentFlags().String("out", "", "Directory to write manifests under (default: temp dir)")

	// Wire Cobra's built-in --version using manifold's binary version
	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("manifold {{.Version}}\n")

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
// This is called from init() for production and can be called explicitly in tests.
func registerSubcommands(cmd *cobra.Command) {
	cmd.AddCommand(versionCmd)
	cmd.AddCommand(newCmd)
	cmd.AddCommand(updateCmd)
	cmd.AddCommand(localeCmd)
	cmd.AddCommand(submitCmd)
	cmd.AddCommand(tokenCmd)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCommand()

// Execute runs the root command. Called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		logger.Error("Command execution failed", logger.Err(err))
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	registerSubcommands(rootCmd)
}

// exitCodeFor maps error taxonomy to process exit codes.
func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, flows.ErrValidationFailed):
		return exitcode.ValidationError
	case errors.Is(err, forge.ErrNoToken), errors.Is(err, forge.ErrForbidden):
		return exitcode.AuthError
	case errors.Is(err, forge.ErrPackageNotFound), errors.Is(err, forge.ErrVersionNotFound):
		return exitcode.GeneralError
	case forge.IsRateLimitError(err):
		return exitcode.NetworkError
	default:
		var httpErr *download.HTTPError
		if errors.As(err, &httpErr) {
			return exitcode.NetworkError
		}
		return exitcode.GeneralError
	}
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	cfg := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "manifold",
	}

	if err := logger.Initialize(cfg); err != nil {
		if _, writeErr := os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n"); writeErr != nil {
			_ = writeErr
		}
		os.Exit(exitcode.ConfigError)
	}
}

// buildDeps assembles the flow dependencies from settings and flags. When
// needToken is set a missing token is an error; otherwise the forge client
// runs unauthenticated (read-only calls).
func buildDeps(cmd *cobra.Command, needToken bool) (flows.Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return flows.Deps{}, err
	}

	formatStr, _ := cmd.Flags().GetString("format")
	if formatStr == "" {
		formatStr = cfg.Manifest.Format
	}
	format, err := manifest.ParseFormat(formatStr)
	if err != nil {
		return flows.Deps{}, err
	}

	token, err := config.LoadToken()
	if err != nil {
		return flows.Deps{}, err
	}
	if needToken && token == "" {
		return flows.Deps{}, forge.ErrNoToken
	}

	cacheDir, err := os.MkdirTemp("", "manifold-dl-*")
	if err != nil {
		return flows.Deps{}, err
	}
	dl := download.New(cacheDir,
		int64(cfg.Download.MaxSizeMB)*1024*1024,
		time.Duration(cfg.Download.TimeoutSeconds)*time.Second)

	return flows.Deps{
		Cfg:    cfg,
		Client: forge.New(cfg, token),
		Cache:  download.NewCache(dl),
		Codec:  manifest.Codec{Format: format},
	}, nil
}

// outDir resolves the --out flag, defaulting to a temp directory so the
// written manifests are always inspectable after a run.
func outDir(cmd *cobra.Command) (string, error) {
	dir, _ := cmd.Flags().GetString("out")
	if dir != "" {
		return dir, nil
	}
	return os.MkdirTemp("", "manifold-out-*")
}

// reportValidation prints schema diagnostics for a local directory check.
func reportValidation(cmd *cobra.Command, res *schema.Result) {
	if res.Valid {
		cmd.Println("Validation passed")
		return
	}
	cmd.Println("Validation failed:")
	for _, e := range res.Errors {
		if e.Source != "" {
			cmd.Printf("  %s: %s: %s\n", e.Source, e.Path, e.Message)
		} else {
			cmd.Printf("  %s: %s\n", e.Path, e.Message)
		}
	}
}
