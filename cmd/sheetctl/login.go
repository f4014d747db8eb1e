package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/premiumcars/listingsheet/internal/client"
)

func newLoginCmd(a *app) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange an identity provider token for a session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token = strings.TrimSpace(token)
			if token == "" {
				return fmt.Errorf("--token is required")
			}

			c, err := a.client(false)
			if err != nil {
				return err
			}
			sess, err := c.SignIn(cmd.Context(), token)
			if err != nil {
				return err
			}

			a.cfg.Session = c.Session()
			if err := saveConfig(a.configPath, a.cfg); err != nil {
				return err
			}

			a.logger.Debug("session stored", slog.String("config", a.configPath))
			fmt.Fprintf(a.out, "Logged in as %s\n", sess.User.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Identity provider token")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.Session == "" {
				fmt.Fprintln(a.out, "Not logged in")
				return nil
			}

			c, err := a.client(true)
			if err != nil {
				return err
			}
			if err := c.SignOut(cmd.Context()); err != nil && !client.IsStatus(err, http.StatusUnauthorized) {
				return err
			}

			a.cfg.Session = ""
			if err := saveConfig(a.configPath, a.cfg); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}
