// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/Work-Fort/Keep/cmd/browse"
	"github.com/Work-Fort/Keep/cmd/cmdutil"
	configCmd "github.com/Work-Fort/Keep/cmd/config"
	"github.com/Work-Fort/Keep/cmd/crypt"
	initcmd "github.com/Work-Fort/Keep/cmd/init"
	"github.com/Work-Fort/Keep/cmd/key"
	"github.com/Work-Fort/Keep/cmd/secrets"
	"github.com/Work-Fort/Keep/cmd/version"
	"github.com/Work-Fort/Keep/pkg/config"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time via ldflags
	// -ldflags "-X github.com/Work-Fort/Keep/cmd.Version=x.y.z"
	Version string

	logLevel string
	useTUI   bool
)

var rootCmd = &cobra.Command{
	Use:   "keep",
	Short: "Encrypted hierarchical password store",
	Long: `Keep - encrypted hierarchical password store

Secrets are OpenPGP-encrypted files in a directory tree, one record of
named fields per file, encrypted to every enabled key in the keyring.
Keep also encrypts and decrypts arbitrary files and directories with
the same keys.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize directories before any command runs
		if err := config.InitDirs(); err != nil {
			return err
		}

		cfg, err := config.Load(config.DefaultConfigPath())
		if err != nil {
			return err
		}
		cmdutil.SetConfig(cfg)

		// Flag and KEEP_LOG_LEVEL win over the config file
		level := cfg.LogLevel()
		if level == "disabled" {
			log.SetOutput(io.Discard)
			return nil
		}

		parsed, err := log.ParseLevel(level)
		if err != nil {
			parsed = log.InfoLevel
		}

		// Always log to file in JSON format
		f, err := os.OpenFile(config.GlobalPaths.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		fileLogger := log.NewWithOptions(f, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "2006-01-02T15:04:05.000Z07:00",
			Level:           parsed,
			ReportCaller:    true,
			Formatter:       log.JSONFormatter,
		})

		log.SetDefault(fileLogger)

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Print error with styling
		theme := config.CurrentTheme
		errorStyle := theme.ErrorStyle()
		fmt.Fprintf(os.Stderr, "%s %s\n", errorStyle.Render("Error:"), err.Error())
		os.Exit(1)
	}
}

func init() {
	// Configure logging - will be redirected to file in PersistentPreRunE
	log.SetReportTimestamp(false)
	log.SetLevel(log.InfoLevel)

	// Initialize Viper configuration
	config.InitViper()

	// Add global flags
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level: disabled, debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&useTUI, "use-tui", true, "Enable terminal UI mode")

	// Bind flags to Viper for config file and environment variable support
	if err := config.BindFlags(rootCmd.PersistentFlags()); err != nil {
		log.Warnf("Failed to bind flags: %v", err)
	}

	// Add subcommands using factory functions
	rootCmd.AddCommand(browse.NewBrowseCmd())
	rootCmd.AddCommand(configCmd.NewConfigCmd())
	rootCmd.AddCommand(crypt.NewEncryptCmd())
	rootCmd.AddCommand(crypt.NewDecryptCmd())
	rootCmd.AddCommand(initcmd.NewInitCmd())
	rootCmd.AddCommand(key.NewKeyCmd())
	for _, c := range secrets.Commands() {
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(version.NewVersionCmd(Version))

	// Set custom help, usage, and error functions
	rootCmd.SetHelpFunc(styledHelpFunc)
	rootCmd.SetUsageFunc(styledUsageFunc)
	rootCmd.SilenceUsage = true  // Don't show usage on errors
	rootCmd.SilenceErrors = true // We'll handle error printing ourselves

	// Disable default completion and provide custom one (Linux only - no powershell)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	initCompletionCmd()
}

// initCompletionCmd creates a custom completion command for Linux shells only.
// This mirrors Cobra's default implementation from completions.go but excludes PowerShell.
func initCompletionCmd() {
	completionCmd := &cobra.Command{
		Use:   "completion",
		Short: "Generate the autocompletion script for the specified shell",
		Long: fmt.Sprintf(`Generate the autocompletion script for %s for the specified shell.
See each sub-command's help for details on how to use the generated script.
`, rootCmd.Name()),
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
	}

	// Flags for shell-specific options
	noDesc := rootCmd.CompletionOptions.DisableDescriptions
	haveNoDescFlag := !rootCmd.CompletionOptions.DisableNoDescFlag && !rootCmd.CompletionOptions.DisableDescriptions
	shortDesc := "Generate the autocompletion script for %s"

	// Bash completion (copied from Cobra's default, Linux paths only)
	bash := &cobra.Command{
		Use:   "bash",
		Short: fmt.Sprintf(shortDesc, "bash"),
		Long: fmt.Sprintf(`Generate the autocompletion script for the bash shell.

This script depends on the 'bash-completion' package.
If it is not installed already, you can install it via your OS's package manager.

To load completions in your current shell session:

	source <(%[1]s completion bash)

To load completions for every new session, execute once:

	%[1]s completion bash > /etc/bash_completion.d/%[1]s

You will need to start a new shell for this setup to take effect.
`, rootCmd.Name()),
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		ValidArgsFunction:     cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenBashCompletionV2(os.Stdout, !noDesc)
		},
	}
	if haveNoDescFlag {
		bash.Flags().BoolVar(&noDesc, "no-descriptions", false, "disable completion descriptions")
	}

	// Zsh completion (copied from Cobra's default, Linux paths only)
	zsh := &cobra.Command{
		Use:   "zsh",
		Short: fmt.Sprintf(shortDesc, "zsh"),
		Long: fmt.Sprintf(`Generate the autocompletion script for the zsh shell.

If shell completion is not already enabled in your environment you will need
to enable it.  You can execute the following once:

	echo "autoload -U compinit; compinit" >> ~/.zshrc

To load completions in your current shell session:

	source <(%[1]s completion zsh)

To load completions for every new session, execute once:

	%[1]s completion zsh > "${fpath[1]}/_%[1]s"

You will need to start a new shell for this setup to take effect.
`, rootCmd.Name()),
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noDesc {
				return cmd.Root().GenZshCompletionNoDesc(os.Stdout)
			}
			return cmd.Root().GenZshCompletion(os.Stdout)
		},
	}
	if haveNoDescFlag {
		zsh.Flags().BoolVar(&noDesc, "no-descriptions", false, "disable completion descriptions")
	}

	// Fish completion (copied from Cobra's default)
	fish := &cobra.Command{
		Use:   "fish",
		Short: fmt.Sprintf(shortDesc, "fish"),
		Long: fmt.Sprintf(`Generate the autocompletion script for the fish shell.

To load completions in your current shell session:

	%[1]s completion fish | source

To load completions for every new session, execute once:

	%[1]s completion fish > ~/.config/fish/completions/%[1]s.fish

You will need to start a new shell for this setup to take effect.
`, rootCmd.Name()),
		Args:              cobra.NoArgs,
		ValidArgsFunction: cobra.NoFileCompletions,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Root().GenFishCompletion(os.Stdout, !noDesc)
		},
	}
	if haveNoDescFlag {
		fish.Flags().BoolVar(&noDesc, "no-descriptions", false, "disable completion descriptions")
	}

	// Add only Linux shells (no PowerShell)
	completionCmd.AddCommand(bash, zsh, fish)
	rootCmd.AddCommand(completionCmd)
}
