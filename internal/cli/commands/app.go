package commands

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/folioadmin/folioadmin/internal/apiclient"
	"github.com/folioadmin/folioadmin/internal/config"
	"github.com/folioadmin/folioadmin/internal/content"
	"github.com/folioadmin/folioadmin/internal/logger"
	"github.com/folioadmin/folioadmin/internal/session"
)

// App carries the dependencies shared by every command. Setup fills in
// whatever a test has not already provided.
type App struct {
	Version   string
	Ephemeral bool

	Config   *config.Config
	Logger   zerolog.Logger
	Sessions *session.Store
	Content  *content.Service

	// Confirm asks a yes/no question before destructive actions.
	Confirm func(label string) (bool, error)
	// ReadPassword reads a password without echoing it.
	ReadPassword func(prompt string) (string, error)
}

// NewApp creates an App with interactive prompts wired to the terminal.
func NewApp(version string) *App {
	return &App{
		Version:      version,
		Logger:       logger.GetLogger(),
		Confirm:      promptConfirm,
		ReadPassword: terminalPassword,
	}
}

// Setup loads configuration, initializes logging and rehydrates the session.
func (a *App) Setup(ctx context.Context) error {
	if a.Config == nil {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a.Config = cfg
		a.Logger = logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	}

	if a.Sessions == nil {
		kind := a.Config.Session.TokenStore
		if a.Ephemeral {
			kind = "memory"
		}
		persist, err := session.NewTokenStore(kind, a.Config.Session.StateDir)
		if err != nil {
			return fmt.Errorf("failed to open token store: %w", err)
		}
		a.Sessions = session.NewStore(persist, a.Logger)
		a.Sessions.Initialize(ctx)
	}

	if a.Content == nil {
		api := apiclient.New(a.Config.API.BaseURL, a.Config.API.Timeout, a.Logger)
		a.Content = content.NewService(api, a.Sessions, a.Logger)
	}
	return nil
}

// State lets guards read the session before Setup has run.
func (a *App) State() session.State {
	if a.Sessions == nil {
		return session.State{}
	}
	return a.Sessions.State()
}

func promptConfirm(label string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		if err == promptui.ErrAbort {
			return false, nil
		}
		return false, fmt.Errorf("confirmation cancelled: %w", err)
	}
	return true, nil
}

func terminalPassword(prompt string) (string, error) {
	// Check if stdin is a terminal (not piped)
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password flag or FOLIO_PASSWORD env var)")
	}
	fmt.Fprint(os.Stderr, prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}
