package cmd

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shopcarts-project/shopctl/internal/output"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage the database credentials secret",
	Long: `Create and delete the postgres credentials secret.

The secret holds the database user and a generated password. Workloads
reference it through their manifests, so it must exist before postgres
is deployed with a fresh database.

Example usage:
  shopctl secret create        # Create credentials with a random password
  shopctl secret rm            # Delete the credentials secret`,
}

var secretCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the postgres credentials secret",
	Long: `Create the postgres credentials secret with a randomly generated
password.

Creating the secret when it already exists replaces it.

Examples:
  shopctl secret create
  shopctl secret create --user shopcarts`,
	RunE: runSecretCreate,
}

var secretRmCmd = &cobra.Command{
	Use:     "rm",
	Aliases: []string{"delete"},
	Short:   "Delete the postgres credentials secret",
	RunE:    runSecretRm,
}

const secretName = "postgres-creds"

func init() {
	rootCmd.AddCommand(secretCmd)
	secretCmd.AddCommand(secretCreateCmd)
	secretCmd.AddCommand(secretRmCmd)

	secretCreateCmd.Flags().String("user", "postgres", "database user name")
	secretCreateCmd.Flags().String("database", "shopcarts", "database name")
}

func runSecretCreate(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	client := newKubeClient()

	user, _ := cmd.Flags().GetString("user")
	database, _ := cmd.Flags().GetString("database")

	password, err := generatePassword()
	if err != nil {
		return fmt.Errorf("generating password: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Replace any existing secret
	if err := client.DeleteSecret(ctx, secretName); err != nil {
		return &output.CLIError{
			Summary:    "failed replacing existing secret",
			Detail:     err.Error(),
			Suggestion: "Ensure the namespace exists: shopctl deploy namespace",
			ExitCode:   output.ExitKubectlError,
		}
	}

	if _, err := client.CreateSecret(ctx, secretName, map[string]string{
		"POSTGRES_USER":     user,
		"POSTGRES_PASSWORD": password,
		"POSTGRES_DB":       database,
	}); err != nil {
		return &output.CLIError{
			Summary:    "failed creating secret",
			Detail:     err.Error(),
			Suggestion: "Ensure the namespace exists: shopctl deploy namespace",
			ExitCode:   output.ExitKubectlError,
		}
	}

	printer.Success("Secret '%s' created", secretName)
	return nil
}

func runSecretRm(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	client := newKubeClient()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.DeleteSecret(ctx, secretName); err != nil {
		return &output.CLIError{
			Summary:    "failed deleting secret",
			Detail:     err.Error(),
			Suggestion: "Run 'shopctl status' to inspect the cluster",
			ExitCode:   output.ExitKubectlError,
		}
	}

	printer.Success("Secret '%s' deleted", secretName)
	return nil
}

// generatePassword returns a 32 character random hex password
func generatePassword() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
