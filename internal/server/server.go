// Package server wires all taskflow components and creates the MCP server.
//
// This is the composition root: it creates the concrete store, analyzer,
// engine and issue backend from configuration and injects them into the
// tools, prompts and resources. No business logic lives here.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/loqalabs/taskflow/internal/analyzer"
	"github.com/loqalabs/taskflow/internal/config"
	"github.com/loqalabs/taskflow/internal/interview"
	"github.com/loqalabs/taskflow/internal/issue"
	"github.com/loqalabs/taskflow/internal/logging"
	"github.com/loqalabs/taskflow/internal/prompts"
	"github.com/loqalabs/taskflow/internal/resources"
	"github.com/loqalabs/taskflow/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// App is a fully wired taskflow instance.
type App struct {
	MCP      *server.MCPServer
	Registry *tools.Registry
	Engine   *interview.Engine
	Analyzer *analyzer.Analyzer

	store interview.Store
	log   *slog.Logger
}

// New builds the App described by cfg. Close must be called on shutdown.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logging.New("server")

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var rules *analyzer.Rules
	if cfg.Analyzer.RulesFile != "" {
		if rules, err = analyzer.LoadRules(cfg.Analyzer.RulesFile); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("loading analyzer rules: %w", err)
		}
	}

	var backend issue.Backend
	registry := analyzer.RepositoryRegistry{Repositories: cfg.GitHub.Repositories}
	if cfg.GitHub.Token != "" {
		gb, err := issue.NewGitHubBackend(cfg.GitHub.Token, cfg.GitHub.BaseURL)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("creating GitHub backend: %w", err)
		}
		backend = gb
		registry.Fetch = issue.Fetcher(gb, cfg.Owner())
	} else {
		log.Warn("no GitHub token configured: issue creation and project snapshots are disabled")
	}

	a := analyzer.New(rules, registry, analyzer.Options{FetchParallelism: cfg.Analyzer.FetchParallelism})
	engine := interview.NewEngine(store, a, interview.Options{
		TitlePrefillMax: cfg.Interview.TitlePrefillMax,
		Retention:       cfg.Interview.Retention,
	})

	reg := tools.Build(tools.Deps{
		Engine:   engine,
		Analyzer: a,
		Backend:  backend,
		Target: tools.IssueTarget{
			Owner:             cfg.Owner(),
			DefaultRepository: cfg.DefaultRepository(),
		},
	})

	s := server.NewMCPServer(
		"taskflow",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	for _, t := range reg.Tools() {
		s.AddTool(t.Definition(), t.Handle)
	}

	// --- Register prompts ---

	interviewPrompt := prompts.NewInterviewPrompt()
	s.AddPrompt(interviewPrompt.Definition(), interviewPrompt.Handle)

	resumePrompt := prompts.NewResumePrompt()
	s.AddPrompt(resumePrompt.Definition(), resumePrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(engine)
	s.AddResource(resourceHandler.ActiveInterviewsResource(), resourceHandler.HandleActiveInterviews)

	log.Info("taskflow ready",
		"version", Version,
		"store", cfg.Store.Backend,
		"tools", len(reg.Names()),
		"repositories", len(cfg.GitHub.Repositories),
	)

	return &App{
		MCP:      s,
		Registry: reg,
		Engine:   engine,
		Analyzer: a,
		store:    store,
		log:      log,
	}, nil
}

// Close releases the interview store.
func (a *App) Close() error {
	return a.store.Close()
}

// RunCleanup applies the retention horizon now and then every interval
// until ctx is done. It returns immediately when retention or the interval
// is disabled.
func (a *App) RunCleanup(ctx context.Context, interval time.Duration) {
	if a.Engine.Retention() <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := a.Engine.Cleanup(ctx); err != nil {
			a.log.Warn("interview cleanup failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// OpenStore opens the interview store selected by cfg.Store.Backend.
func OpenStore(ctx context.Context, cfg *config.Config) (interview.Store, error) {
	switch cfg.Store.Backend {
	case "file":
		return interview.NewFileStore(cfg.DataDir)
	case "redis":
		return interview.NewRedisStore(ctx, cfg.Store.RedisAddr)
	case "sqlite", "":
		return interview.NewSQLiteStore(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// serverInstructions returns the system instructions that tell the AI
// how to use taskflow.
func serverInstructions() string {
	return `You have access to taskflow, an issue-intake server for a multi-repository project.

## WHEN TO USE taskflow

- The user has an idea, a bug, or a request that may deserve an issue: call thought_capture first.
  It classifies the thought, scores it against the open issues of every configured repository,
  lists related issues, and recommends one of:
  - create-issue: start an interview with interview_start
  - merge-into-existing: suggest commenting on the named issue instead
  - capture-only: the thought is worth noting, not worth an issue yet
- The user explicitly wants an issue: use the issue-interview prompt flow.

## INTERVIEWS

1. interview_start with the user's own words. The reply contains the interview id and the first question.
2. Ask the user each question exactly as returned. Offer the suggested answer when one is shown.
3. Send every answer with interview_answer. Some answers add follow-up questions
   (protocol changes ask about breaking changes; breaking changes ask for a migration plan).
4. When the interview is complete, run issue_create with dry_run=true, show the preview, and
   create the issue after the user confirms.

Interviews are saved after every answer. Use interview_list_active and interview_status to resume one.
Calling issue_create twice for the same interview returns the issue already created.

## ERRORS

- "busy": another answer for the same interview is being recorded; retry in a moment.
- "not found": the interview expired or was cleaned up; start a new one.
- issue backend errors never change the interview; fix the cause and call issue_create again.`
}
