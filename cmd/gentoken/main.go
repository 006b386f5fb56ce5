package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/saturnino-fabrica-de-software/rollcall/internal/admin"
)

type tokenEnv struct {
	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	JWTIssuer string `envconfig:"JWT_ISSUER" default:"rollcall"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	subject := flag.String("subject", "", "Token subject, e.g. the operator's login")
	role := flag.String("role", string(admin.RoleOperator), "Role: admin or operator")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	refresh := flag.String("refresh", "", "Re-issue this still valid token with a new expiry")
	flag.Parse()

	_ = godotenv.Load()

	var env tokenEnv
	if err := envconfig.Process("", &env); err != nil {
		return err
	}
	tokens := admin.NewJWTService(env.JWTSecret, env.JWTIssuer, *ttl)

	var (
		token string
		err   error
	)
	if *refresh != "" {
		token, err = tokens.RefreshToken(*refresh)
	} else {
		if *subject == "" {
			return errors.New("-subject is required")
		}
		var r admin.Role
		if r, err = admin.ParseRole(*role); err != nil {
			return err
		}
		token, err = tokens.GenerateToken(*subject, r)
	}
	if err != nil {
		return err
	}

	claims, err := tokens.ValidateToken(token)
	if err != nil {
		return err
	}
	fmt.Printf("TOKEN=%s\nSUBJECT=%s\nROLE=%s\nEXPIRES=%s\n",
		token, claims.Subject, claims.Role, claims.ExpiresAt.UTC().Format(time.RFC3339))
	return nil
}
