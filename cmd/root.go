package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizforge/internal/config"
	"github.com/abhisek/quizforge/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizforge",
	Short: "Generate and grade quizzes with an LLM",
	Long: "quizforge turns a topic or source text into a typed quiz " +
		"(multi-choice, fill-gaps, short-answer) and grades submitted answers.",
	SilenceUsage: true,
}

// Execute runs the CLI. Interrupts cancel in-flight completions.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides QUIZFORGE_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file (overrides QUIZFORGE_CONFIG env var)")
	rootCmd.PersistentFlags().String("user", "", "User id that owns quizzes and attempts (default $QUIZFORGE_USER or $USER)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path from the --db flag, then the
// configured store path, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg != nil && cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}

// resolveUser returns the acting user id.
func resolveUser(cmd *cobra.Command) string {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		return u
	}
	for _, k := range []string{"QUIZFORGE_USER", "USER", "USERNAME"} {
		if u := os.Getenv(k); u != "" {
			return u
		}
	}
	return "local"
}
