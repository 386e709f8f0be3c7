package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/webeat/weve/pkg/jwt"
)

var (
	privateKeyPath string
	publicKeyPath  string
	overwriteKeys  bool
)

// keysCmd groups signing key management
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage the login flow signing keys",
}

// keysGenerateCmd writes a new RSA key pair
var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a new RSA key pair",
	Long: `Generate a 2048-bit RSA key pair for signing the single sign-on flow
cookie. Point JWT_PRIVATE_KEY_PATH and JWT_PUBLIC_KEY_PATH at the output.

Existing files are left alone unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runKeysGenerate,
}

func init() {
	keysGenerateCmd.Flags().StringVar(&privateKeyPath, "private", "./keys/private.pem", "Private key output path")
	keysGenerateCmd.Flags().StringVar(&publicKeyPath, "public", "./keys/public.pem", "Public key output path")
	keysGenerateCmd.Flags().BoolVar(&overwriteKeys, "force", false, "Overwrite existing key files")
	keysCmd.AddCommand(keysGenerateCmd)
}

func runKeysGenerate(cmd *cobra.Command, args []string) error {
	if !overwriteKeys {
		for _, path := range []string{privateKeyPath, publicKeyPath} {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists (use --force to replace it)", path)
			}
		}
	}
	for _, path := range []string{privateKeyPath, publicKeyPath} {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return fmt.Errorf("create key directory: %w", err)
		}
	}

	if err := jwt.GenerateKeyPair(privateKeyPath, publicKeyPath); err != nil {
		return fmt.Errorf("generate keys: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "private key: %s\n", privateKeyPath)
	fmt.Fprintf(out, "public key:  %s\n", publicKeyPath)
	return nil
}
