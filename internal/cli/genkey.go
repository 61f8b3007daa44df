package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/computerwizzy/shopify-inventory-sync/internal/crypto"
)

type GenKeyCommand struct {
	Quiet bool
}

func NewGenKeyCommand() *GenKeyCommand {
	return &GenKeyCommand{}
}

func (cmd *GenKeyCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("gen-key", flag.ExitOnError)

	fs.BoolVar(&cmd.Quiet, "quiet", false, "Print only the key, without usage instructions")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s gen-key [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate a new AES-256 key for encrypting stored feed credentials.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s gen-key\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  export CREDENTIALS_ENCRYPTION_KEY=$(%s gen-key -quiet)\n", os.Args[0])
	}

	return fs.Parse(args)
}

func (cmd *GenKeyCommand) Run() error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return fmt.Errorf("failed to generate key: %w", err)
	}

	if cmd.Quiet {
		fmt.Println(key)
		return nil
	}

	fmt.Println("=== Credentials Encryption Key ===")
	fmt.Println()
	fmt.Println(key)
	fmt.Println()
	fmt.Println("Set it before starting the server:")
	fmt.Println()
	fmt.Printf("  export CREDENTIALS_ENCRYPTION_KEY=%s\n", key)
	fmt.Println()
	fmt.Println("[OK] Keep this key safe: feed passwords encrypted with it cannot be recovered without it")
	return nil
}
