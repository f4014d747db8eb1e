package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/premiumcars/listingsheet/internal/auth"
	"github.com/premiumcars/listingsheet/internal/model"
	"github.com/premiumcars/listingsheet/internal/repository"
)

type output struct {
	UserID    string    `json:"user_id,omitempty"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func main() {
	var (
		secret      = flag.String("secret", os.Getenv("AUTH_PROVIDER_SECRET"), "Identity provider signing secret")
		issuer      = flag.String("issuer", os.Getenv("AUTH_PROVIDER_ISSUER"), "Token issuer")
		email       = flag.String("email", "dev@premiumcars.nl", "Email the token asserts")
		ttl         = flag.Duration("ttl", 10*time.Minute, "Token lifetime")
		databaseURL = flag.String("database-url", "", "Provision the user in this database as well")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "AUTH_PROVIDER_SECRET is required")
		os.Exit(1)
	}
	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, "email is required")
		os.Exit(1)
	}

	out := output{Email: strings.TrimSpace(*email)}

	if *databaseURL != "" {
		userID, err := provisionUser(*databaseURL, out.Email)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		out.UserID = userID
	}

	token, err := auth.SignProviderToken(*secret, *issuer, out.Email, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign token:", err)
		os.Exit(1)
	}
	out.Token = token
	out.ExpiresAt = time.Now().Add(*ttl).UTC()

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func provisionUser(databaseURL, email string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, databaseURL)
	if err != nil {
		return "", fmt.Errorf("connect database: %w", err)
	}
	defer repo.Close()

	user, err := repo.GetOrCreateUser(ctx, &model.User{
		ID:        ulid.Make().String(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("provision user: %w", err)
	}
	return user.ID, nil
}
