package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"casesync/internal/app"
	"casesync/internal/config"
	"casesync/internal/encryption"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
func newApp(ctx context.Context) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// promptPassphrase reads a passphrase from the terminal without echo.
func promptPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(pass), nil
}

var rootCmd = &cobra.Command{
	Use:   "casesync",
	Short: "Reconcile a remote folder of scanned case documents into the case store",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init REMOTE_ROOT",
	Short: "Initialize configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		encrypted, _ := cmd.Flags().GetBool("encrypted-cache")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(args[0], defaults["base_dir"])
		cfg.Cache.Encrypted = encrypted

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		if encrypted {
			pass, err := promptPassphrase("Passphrase for cache encryption key: ")
			if err != nil {
				return err
			}
			confirm, err := promptPassphrase("Confirm passphrase: ")
			if err != nil {
				return err
			}
			if pass != confirm {
				return fmt.Errorf("passphrases do not match")
			}

			enc := encryption.NewAgeEncryptor(cfg.Encryption)
			if err := enc.Setup(pass); err != nil {
				return fmt.Errorf("setting up encryption keys: %w", err)
			}
			fmt.Printf("Encryption keys written under %s\n", defaults["base_dir"])
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Remote Root: %s\n", cfg.Root)
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Remote Root:   %s\n", cfg.Root)
		fmt.Printf("Remote Type:   %s\n", cfg.Remote.Type)
		fmt.Printf("Base Dir:      %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("Poll Interval: %s\n", cfg.PollInterval())
		fmt.Printf("Cache:         %s (encrypted=%v)\n", cfg.Cache.Type, cfg.Cache.Encrypted)
		return nil
	},
}

// sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync cycle now",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.Sync(cmd.Context())
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}

		fmt.Printf("Updated %d suggestion(s), %d error(s)\n", len(res.NewOrUpdated), len(res.Errors))
		for _, e := range res.Errors {
			fmt.Printf("  error: %v\n", e)
		}
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Poll the remote on a schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Serve(ctx)
	},
}

// pending command
var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "View the pending suggestion queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		caseID, _ := cmd.Flags().GetString("case")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		suggestions, err := a.Pending(caseID)
		if err != nil {
			return err
		}

		if len(suggestions) == 0 {
			fmt.Println("No pending suggestions.")
			return nil
		}

		for _, s := range suggestions {
			caseGuess := s.GuessedCaseID
			if caseGuess == "" {
				caseGuess = "-"
			}
			slotGuess := "-"
			if len(s.GuessedSlots) > 0 {
				slotGuess = fmt.Sprintf("%s (%.2f)", s.GuessedSlots[0].Key, s.GuessedSlots[0].Confidence)
			}
			fmt.Printf("%s  %-40s  %8d  case:%s  slot:%s\n",
				s.ID[:12], s.RemotePath, s.SizeBytes, caseGuess, slotGuess)
		}
		return nil
	},
}

// link command
var linkCmd = &cobra.Command{
	Use:   "link SUGGESTION_ID CASE SLOT_KEY",
	Short: "Attach a suggestion to a case's document slot",
	Long: `Attach a suggestion to a case's document slot.

CASE is a case ID, or a display name for a new case when --new-case is set.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		newCase, _ := cmd.Flags().GetBool("new-case")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		suggestionID, caseArg, slotKey := args[0], args[1], args[2]

		if newCase {
			caseID, err := a.LinkNewCase(suggestionID, caseArg, slotKey)
			if err != nil {
				return fmt.Errorf("link failed: %w", err)
			}
			fmt.Printf("Created case %s and linked %s to %s\n", caseID, suggestionID, slotKey)
			return nil
		}

		if err := a.Link(suggestionID, caseArg, slotKey, overwrite); err != nil {
			return fmt.Errorf("link failed: %w", err)
		}
		fmt.Printf("Linked %s to case %s slot %s\n", suggestionID, caseArg, slotKey)
		return nil
	},
}

// ignore command
var ignoreCmd = &cobra.Command{
	Use:   "ignore SUGGESTION_ID",
	Short: "Mark a suggestion as not relevant to any case",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reason, _ := cmd.Flags().GetString("reason")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Ignore(args[0], reason); err != nil {
			return fmt.Errorf("ignore failed: %w", err)
		}
		fmt.Printf("Ignored %s\n", args[0])
		return nil
	},
}

// audit command
var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "View recent audit entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := a.Audits(limit)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No audit entries.")
			return nil
		}

		for _, e := range entries {
			reason := ""
			if e.Reason != "" {
				reason = "  " + e.Reason
			}
			fmt.Printf("%s  %-8s  %-12s  %s  by:%s%s\n",
				e.At.Format("2006-01-02 15:04:05"),
				e.Action,
				e.CaseID,
				e.RemotePath,
				e.By,
				reason,
			)
		}
		return nil
	},
}

// cases command
var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List known cases",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		cases, err := a.Cases()
		if err != nil {
			return err
		}

		if len(cases) == 0 {
			fmt.Println("No cases.")
			return nil
		}

		for _, c := range cases {
			fmt.Printf("%s  %-10s  %s\n", c.ID, c.Code, c.DisplayName)
		}
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export CONTENT_HASH",
	Short: "Write cached file content to a file or stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase := ""
		if a.CacheEncrypted() {
			passphrase, err = promptPassphrase("Cache passphrase: ")
			if err != nil {
				return err
			}
		}

		w := os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		if err := a.ExportContent(args[0], w, passphrase); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("encrypted-cache", false, "Encrypt cached content at rest")
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(pendingCmd)
	pendingCmd.Flags().String("case", "", "Only suggestions guessed for this case ID")
	rootCmd.AddCommand(linkCmd)
	linkCmd.Flags().Bool("overwrite", false, "Replace an existing attachment in the slot")
	linkCmd.Flags().Bool("new-case", false, "Treat CASE as a display name and create the case")
	rootCmd.AddCommand(ignoreCmd)
	ignoreCmd.Flags().String("reason", "", "Why the file is not relevant")
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().IntP("limit", "n", 50, "Maximum number of entries to show")
	rootCmd.AddCommand(casesCmd)
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "", "Write to file instead of stdout")
}
