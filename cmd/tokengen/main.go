// Package main provides a CLI tool for generating approver tokens for local
// and demo environments. These tokens use the dev signing key and will NOT
// work against a production deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"chefpass/pkg/platform/middleware/approver"
	"chefpass/pkg/secrets"
)

const (
	// Dev signing key - matches config.go when CHEFPASS_APPROVER_SIGNING_KEY is not set
	devSigningKey = "dev-secret-key-change-in-production"

	defaultTTL = 12 * time.Hour
)

type tokenOutput struct {
	Token     string `json:"token"`
	Approver  string `json:"approver"`
	ExpiresIn string `json:"expires_in"`
	Usage     string `json:"usage"`
}

func main() {
	approverID := flag.String("approver-id", "", "Approver identifier stamped on approvals. Generated if empty.")
	ttl := flag.Duration("ttl", defaultTTL, "Token time-to-live")
	signingKey := flag.String("signing-key", devSigningKey, "HMAC signing key (must match the server's)")
	asJSON := flag.Bool("json", false, "Output as JSON")
	hashKey := flag.Bool("hash-signing-key", false, "Print a bcrypt hash of the signing key for secret storage and exit")
	staticToken := flag.Bool("static-token", false, "Mint a random static approver token and its bcrypt hash for CHEFPASS_APPROVER_TOKEN_HASH, then exit")
	flag.Parse()

	if *staticToken {
		token, err := secrets.Generate()
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		hash, err := secrets.Hash(token)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		fmt.Println("token:", token)
		fmt.Println("hash: ", hash)
		return
	}

	if *hashKey {
		hash, err := secrets.Hash(*signingKey)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	id := *approverID
	if id == "" {
		id = uuid.New().String()
	}

	token, err := approver.NewToken(*signingKey, id, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if *asJSON {
		out := tokenOutput{
			Token:     token,
			Approver:  id,
			ExpiresIn: ttl.String(),
			Usage:     `curl -H "Authorization: Bearer <token>" -X POST /print-jobs/{id}/approve`,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}

	fmt.Println("approver:", id)
	fmt.Println("token:   ", token)
	fmt.Println("expires: ", ttl.String())
}
