package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	_ "github.com/joho/godotenv/autoload"

	"github.com/jackwu/routerchat/chat"
	"github.com/jackwu/routerchat/config"
	"github.com/jackwu/routerchat/logging"
	"github.com/jackwu/routerchat/model"
	"github.com/jackwu/routerchat/router"
	"github.com/jackwu/routerchat/session"
	"github.com/jackwu/routerchat/tui"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("routerchat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to config file (default "+config.DefaultPath()+")")
	once := fs.String("once", "", "send one prompt, print the reply and exit")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		fmt.Fprintln(stdout, "routerchat", version)
		return 0
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	logger, closer, err := logging.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v\n", err)
	}
	defer closer.Close()
	logger.Info("starting", "version", version, "router", cfg.Router.URL)

	client := router.New(cfg.Router.URL, cfg.Router.LogsURL, router.WithLogger(logger))
	store := session.New(model.GreetingTurn(cfg.Chat.Greeting))
	orch := chat.NewOrchestrator(store, client, logger)

	// --once: plain text round trip (for testing / scripting)
	if *once != "" {
		if !orch.Submit(ctx, *once) {
			fmt.Fprintln(stderr, "Error: empty prompt")
			return 2
		}
		turns := store.Turns()
		printTurns(stdout, turns[len(turns)-2:], stdout == os.Stdout && !color.NoColor)
		if last, _ := store.Last(); !last.HasMeta() {
			return 1
		}
		return 0
	}

	m := tui.NewModel(tui.Options{
		Context:      ctx,
		Store:        store,
		Orchestrator: orch,
		Logs:         client,
		DashboardURL: cfg.Dashboard.URL,
		Logger:       logger,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		logger.Error("tui exited", "error", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger.Info("exiting", "turns", store.Len())
	return 0
}

// printTurns writes turns as plain rows, coloring the role column and the
// routing footer when colored is set.
func printTurns(w io.Writer, turns []model.Turn, colored bool) {
	userColor := color.New(color.FgGreen, color.Bold)
	routerColor := color.New(color.FgCyan, color.Bold)
	metaColor := color.New(color.FgHiBlack)
	for _, c := range []*color.Color{userColor, routerColor, metaColor} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	for _, t := range turns {
		role := userColor.Sprintf("%-6s", "you")
		if t.Role == model.RoleAssistant {
			role = routerColor.Sprintf("%-6s", "router")
		}
		fmt.Fprintf(w, "%s │ %s\n", role, t.Content)
		if t.Meta != nil {
			fmt.Fprintf(w, "%-6s │ %s\n", "", metaColor.Sprintf("model=%s decision=%s saved=%s",
				t.Meta.ModelUsed, t.Meta.RoutingDecision, t.Meta.CostSaved))
		}
	}
}
