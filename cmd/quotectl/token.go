package main

import (
	"fmt"
	"os"
	"time"

	jwtmw "quote_backend/internal/platform/jwt"

	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	var (
		ttl   time.Duration
		admin bool
	)
	cmd := &cobra.Command{
		Use:   "token SUBJECT",
		Short: "Issue an API bearer token signed with JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scopes := []string{jwtmw.ScopeRead}
			if admin {
				scopes = []string{jwtmw.ScopeAdmin}
			}
			var gen jwtmw.Generator = jwtmw.NewGenerator(os.Getenv(jwtmw.EnvKeyJWTSecret), ttl)
			tok, err := gen.GenerateToken(args[0], scopes...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, tok)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant the admin scope")
	return cmd
}
