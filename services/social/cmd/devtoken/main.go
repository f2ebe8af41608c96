// Command devtoken mints a bearer token for local development against a
// service configured with the same JWT_SECRET.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/example/socialtrust/internal/platform/auth"
	"github.com/example/socialtrust/internal/platform/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var (
		userID = pflag.String("user", "", "user id (token subject)")
		name   = pflag.String("name", "", "display name claim")
		role   = pflag.String("role", "", "role claim, e.g. moderator")
		secret = pflag.String("secret", cfg.JWTSecret, "HS256 secret, defaults to JWT_SECRET")
		ttl    = pflag.Duration("ttl", 24*time.Hour, "token lifetime")
	)
	pflag.Parse()

	tok, exp, err := auth.Issuer{Secret: []byte(*secret), TTL: *ttl}.Issue(*userID, *name, *role, time.Time{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		pflag.Usage()
		os.Exit(2)
	}
	fmt.Fprintf(os.Stderr, "expires %s\n", exp.Format(time.RFC3339))
	fmt.Println(tok)
}
