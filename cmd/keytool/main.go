package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/temptedwithouta/eazy-career-backend/internal/config"
	"github.com/temptedwithouta/eazy-career-backend/internal/infrastructure/auth"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "rotate":
		if err := cmdRotate(cfg, os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "rotate failed:", err)
			os.Exit(1)
		}
	case "show":
		if err := cmdShow(cfg, os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "show failed:", err)
			os.Exit(1)
		}
	default:
		printUsage()
		os.Exit(2)
	}
}

type keyOptions struct {
	dir string
	alg string
}

// parseKeyFlags reads the key location from args. Unset flags fall back to
// the server config.
func parseKeyFlags(name string, cfg *config.Config, args []string) (keyOptions, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	dir := fs.String("key-dir", cfg.KeyDir, "directory holding the PEM files and jwks.json")
	alg := fs.String("alg", cfg.JWTAlg, "JWS algorithm of the signing key")
	if err := fs.Parse(args); err != nil {
		return keyOptions{}, err
	}
	return keyOptions{dir: *dir, alg: *alg}, nil
}

func cmdRotate(cfg *config.Config, args []string) error {
	opts, err := parseKeyFlags("rotate", cfg, args)
	if err != nil {
		return err
	}

	keys, err := auth.NewKeyManager(opts.dir, opts.alg)
	if err != nil {
		return err
	}
	pair, err := keys.Rotate(context.Background())
	if err != nil {
		return err
	}
	return printActive(keys, pair)
}

func cmdShow(cfg *config.Config, args []string) error {
	opts, err := parseKeyFlags("show", cfg, args)
	if err != nil {
		return err
	}

	keys, err := auth.NewKeyManager(opts.dir, opts.alg)
	if err != nil {
		return err
	}
	pair, err := keys.EnsureKeyPair(context.Background())
	if err != nil {
		return err
	}
	return printActive(keys, pair)
}

func printActive(keys *auth.KeyManager, pair *auth.KeyPair) error {
	jwk, err := auth.PublicJWK(pair.Public, keys.Alg())
	if err != nil {
		return err
	}
	set, err := keys.JWKS().Load()
	if err != nil {
		return err
	}
	fmt.Printf("alg=%s kid=%s published=%d\n", keys.Alg(), jwk.KeyID, len(set.Keys))
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: keytool <rotate|show> [-key-dir dir] [-alg ES256]")
}
