package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/folio/backend/pkg/client"
)

func (a *app) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start an admin session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			if password == "" {
				if password, err = a.askPassword(); err != nil {
					return err
				}
			}
			if err := c.Login(cmd.Context(), password); err != nil {
				if errors.Is(err, client.ErrInvalidPassword) {
					return errors.New("invalid password")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in. Session expires at %s.\n",
				c.Session().ExpiresAt().Local().Format(time.DateTime))
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "admin password (prompted when omitted)")
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the local admin session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			if err := c.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func (a *app) sessionCmd() *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Show the admin session state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			s := c.Session()
			now := time.Now()
			state := s.Check(now)
			if state != client.StateAuthenticated && state != client.StateExpiringSoon {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}
			fmt.Fprintf(out, "State: %s\nRemaining: %s\n", state, s.Remaining(now).Round(time.Minute))
			if state == client.StateExpiringSoon {
				fmt.Fprintln(out, "The session expires soon. Run `folioctl login` to start a new one.")
			}
			if verify {
				exp, err := c.VerifySession(cmd.Context())
				if errors.Is(err, client.ErrSessionExpired) {
					fmt.Fprintln(out, "The server rejected the session; it has been cleared.")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Server confirms session until %s.\n", exp.Local().Format(time.DateTime))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "check the session with the server")
	return cmd
}

func (a *app) resetCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "emergency-reset",
		Short: "Revoke every admin session on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if key == "" {
				return errors.New("--key is required")
			}
			c, err := a.apiClient()
			if err != nil {
				return err
			}
			if err := c.EmergencyReset(cmd.Context(), key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All admin sessions revoked.")
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "emergency reset key")
	return cmd
}
