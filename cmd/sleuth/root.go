package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marta/sleuth/config"
	"github.com/marta/sleuth/internal/agent"
	"github.com/marta/sleuth/internal/db"
	"github.com/marta/sleuth/internal/gcplog"
	"github.com/marta/sleuth/internal/llm"
	"github.com/marta/sleuth/internal/notify"
	"github.com/marta/sleuth/internal/repo"
)

var (
	maxIterations int
	verbose       bool
	hours         int
)

var rootCmd = &cobra.Command{
	Use:   "sleuth",
	Short: "Autonomous production-bug investigator for Cloud Run services",
	Long: `sleuth reads recent Cloud Run logs, hunts for the root cause in the
service's GitHub repository, and opens a pull request with a proposed fix.

Run it bare for a single investigation, or use "sleuth watch" to
investigate on a schedule.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		deps, err := buildDeps(ctx)
		if err != nil {
			return err
		}
		defer deps.Close()

		return investigate(ctx, deps)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVar(&maxIterations, "max-iterations", 15, "most model calls per investigation")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log tool arguments and results")
	rootCmd.PersistentFlags().IntVar(&hours, "hours", 24, "how far back to read logs")
}

// dependencies holds the wired clients an investigation needs. Close
// releases the logging client's credential handle and the history
// database.
type dependencies struct {
	cfg      *config.Config
	logs     *gcplog.Client
	history  *db.Store
	notifier *notify.Notifier
	agent    *agent.Agent
}

func buildDeps(ctx context.Context) (*dependencies, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	apiKey := cfg.OpenAIKey
	if cfg.LLMProvider == "anthropic" {
		apiKey = cfg.AnthropicKey
	}
	client, err := llm.NewClient(llm.ProviderConfig{
		Provider: cfg.LLMProvider,
		APIKey:   apiKey,
		Model:    cfg.LLMModel,
		BaseURL:  cfg.OllamaBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating LLM client: %w", err)
	}

	logs, err := gcplog.New(ctx, cfg.ProjectID, cfg.GCPKey)
	if err != nil {
		return nil, err
	}

	repository, err := repo.New(cfg.GitHubToken, cfg.GitHubRepo)
	if err != nil {
		logs.Close()
		return nil, err
	}

	history, err := db.Open(cfg.DatabasePath)
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	var notifier *notify.Notifier
	if cfg.DiscordToken != "" && cfg.DiscordChannelID != "" {
		notifier, err = notify.New(cfg.DiscordToken, cfg.DiscordChannelID)
		if err != nil {
			log.Printf("disabling Discord notifications: %v", err)
			notifier = nil
		}
	}

	dispatcher := agent.NewDispatcher(logs, repository, cfg.ServiceName)

	return &dependencies{
		cfg:      cfg,
		logs:     logs,
		history:  history,
		notifier: notifier,
		agent:    agent.New(client, dispatcher, maxIterations, verbose),
	}, nil
}

func (d *dependencies) Close() {
	if err := d.logs.Close(); err != nil {
		log.Printf("closing logging client: %v", err)
	}
	if err := d.history.Close(); err != nil {
		log.Printf("closing history database: %v", err)
	}
}

// investigate runs one full investigation, records the outcome, and
// announces it. Only a model transport failure is returned as an error;
// bookkeeping problems are logged and the run still counts.
func investigate(ctx context.Context, deps *dependencies) error {
	cfg := deps.cfg
	log.Printf("investigating %s in project %s (last %d hours)", cfg.ServiceName, cfg.ProjectID, hours)

	prompt := agent.BuildInvestigationPrompt(cfg.ServiceName, cfg.ProjectID, cfg.GitHubRepo, hours)
	res, err := deps.agent.Run(ctx, llm.SystemPrompt, prompt)
	if err != nil {
		return err
	}

	prURL := res.PullRequestURL()
	if err := deps.history.RecordRun(db.Run{
		ID:         res.RunID,
		Service:    cfg.ServiceName,
		Phase:      string(res.Phase),
		Iterations: res.Iterations,
		Summary:    res.Summary,
		PRURL:      prURL,
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
	}); err != nil {
		log.Printf("recording run: %v", err)
	}

	if deps.notifier != nil {
		deps.notifier.Announce(notify.Outcome{
			Service:    cfg.ServiceName,
			Completed:  res.Phase == agent.PhaseCompleted,
			Iterations: res.Iterations,
			Summary:    res.Summary,
			PRURL:      prURL,
		})
	}

	fmt.Println(res.Summary)
	if prURL != "" {
		fmt.Println(prURL)
	}
	return nil
}
