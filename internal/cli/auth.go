package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/circles/internal/auth"
	"github.com/idilsaglam/circles/internal/ui"
)

func (a *App) authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the API token",
		Long: `Manage the token sent to the circle service.

The token is stored in ~/.circles/credentials.json. ` + auth.EnvToken + ` overrides it.`,
	}
	cmd.AddCommand(a.authLoginCmd(), a.authLogoutCmd(), a.authStatusCmd(), a.authWhoamiCmd())
	return cmd
}

func (a *App) authLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [TOKEN]",
		Short: "Store a token (read from stdin when not given)",
		Args:  maxArgs(1, "[TOKEN]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				fmt.Fprint(a.Err, "Paste your token: ")
				sc := bufio.NewScanner(cmd.InOrStdin())
				sc.Buffer(make([]byte, 0, 4096), 64<<10)
				if !sc.Scan() {
					if err := sc.Err(); err != nil {
						return fmt.Errorf("read token: %w", err)
					}
					return usagef("auth login: no token given")
				}
				token = sc.Text()
			}
			if strings.TrimSpace(token) == "" {
				return usagef("auth login: empty token")
			}
			if err := auth.SetToken(token, nil); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			ui.OK(a.Out, "logged in")
			return nil
		},
	}
}

func (a *App) authLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored token",
		Args:  noArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ti, _ := auth.GetToken()
			if ti != nil && ti.Source == auth.SourceEnv {
				ui.OK(a.Out, "token is provided by "+auth.EnvToken+" (nothing to delete)")
				return nil
			}
			if err := auth.DeleteToken(); err != nil {
				return fmt.Errorf("logout: %w", err)
			}
			ui.OK(a.Out, "logged out")
			return nil
		},
	}
}

func (a *App) authStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the token comes from and when it expires",
		Args:  noArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ti, err := auth.GetToken()
			if err != nil {
				return err
			}
			if ti == nil {
				fmt.Fprintln(a.Out, ui.Current().Muted.Render("not logged in"))
				fmt.Fprintln(a.Out, "Run: circles auth login")
				return nil
			}
			fmt.Fprintf(a.Out, "source: %s\n", ti.Source)
			switch {
			case ti.ExpiresAt == nil:
				fmt.Fprintln(a.Out, "expires: (unknown)")
			case ti.Expired(time.Now()):
				fmt.Fprintf(a.Out, "expires: %s %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339), ui.Current().Error.Render("(expired)"))
			default:
				fmt.Fprintf(a.Out, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
			}
			fmt.Fprintf(a.Out, "env override: %s\n", auth.EnvToken)
			return nil
		},
	}
}

// whoami decodes JWT claims locally without verifying them; opaque tokens
// print basic info.
func (a *App) authWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the claims of the stored token",
		Args:  noArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ti, err := auth.GetToken()
			if err != nil {
				return err
			}
			if ti == nil {
				return usagef("not logged in. Run: circles auth login")
			}
			claims, err := auth.Claims(ti.Token)
			if err != nil {
				fmt.Fprintln(a.Out, "Opaque token (cannot introspect locally).")
				fmt.Fprintln(a.Out, "source:", ti.Source)
				return nil
			}
			b, err := json.MarshalIndent(claims, "", "  ")
			if err != nil {
				return fmt.Errorf("encode claims: %w", err)
			}
			fmt.Fprintln(a.Out, "JWT payload:")
			fmt.Fprintln(a.Out, string(b))
			return nil
		},
	}
}
