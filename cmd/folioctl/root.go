package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/folio/backend/internal/logging"
	"github.com/folio/backend/pkg/client"
)

// cliConfig is read from the environment (and an optional .env file).
type cliConfig struct {
	APIURL      string `env:"FOLIO_API_URL" envDefault:"http://localhost:8080"`
	AnonKey     string `env:"FOLIO_ANON_KEY"`
	SessionFile string `env:"FOLIO_SESSION_FILE"`
}

type app struct {
	cfg     cliConfig
	verbose bool
	client  *client.Client

	// askPassword reads the admin password interactively.
	askPassword func() (string, error)
	// confirm asks a yes/no question.
	confirm func(label string) bool
}

func newApp() *app {
	return &app{askPassword: promptPassword, confirm: promptConfirm}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "folioctl",
		Short:         "Administer a folio site",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := "WARN"
			if a.verbose {
				level = "DEBUG"
			}
			slog.SetDefault(logging.NewText(cmd.ErrOrStderr(), level))

			_ = godotenv.Load()
			if err := env.Parse(&a.cfg); err != nil {
				return fmt.Errorf("parse env: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.sessionCmd(),
		a.resetCmd(),
		a.healthCmd(),
		a.contactsCmd(),
		a.subscribersCmd(),
		a.newsletterCmd(),
		siteCmd(),
	)
	return root
}

// apiClient builds the API client on first use. Site commands never need it.
func (a *app) apiClient() (*client.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	if a.cfg.AnonKey == "" {
		return nil, errors.New("FOLIO_ANON_KEY is not set")
	}
	path := a.cfg.SessionFile
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("locate config dir: %w", err)
		}
		path = filepath.Join(dir, "folio", "session.json")
	}
	c, err := client.New(client.Config{
		BaseURL: a.cfg.APIURL,
		AnonKey: a.cfg.AnonKey,
		Store:   client.FileStore{Path: path},
	})
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

func promptPassword() (string, error) {
	p := promptui.Prompt{
		Label: "Admin password",
		Mask:  '*',
		Validate: func(s string) error {
			if s == "" {
				return errors.New("password is required")
			}
			return nil
		},
	}
	return p.Run()
}

func promptConfirm(label string) bool {
	p := promptui.Prompt{Label: label, IsConfirm: true}
	_, err := p.Run()
	return err == nil
}
