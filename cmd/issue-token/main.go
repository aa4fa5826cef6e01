// Command issue-token mints an access token for a respondent using the
// service's JWT settings. Identity is delegated to an upstream provider in
// production; this tool covers local development and smoke tests.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/noah-isme/availability-api/internal/service"
	"github.com/noah-isme/availability-api/pkg/config"
)

func main() {
	userID := flag.String("user", "", "Respondent user id (required)")
	email := flag.String("email", "", "Email claim")
	name := flag.String("name", "", "Display name claim")
	ttl := flag.Duration("ttl", 0, "Token lifetime, defaults to JWT_EXPIRATION")
	flag.Parse()

	if *userID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	expiry := cfg.JWT.Expiration
	if *ttl > 0 {
		expiry = *ttl
	}

	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer, Expiry: expiry})
	token, expiresAt, err := tokens.Issue(*userID, *email, *name)
	if err != nil {
		log.Fatalf("failed to issue token: %v", err)
	}
	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires %s\n", expiresAt.Format(time.RFC3339))
}
