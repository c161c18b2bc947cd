package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tcnksm/go-input"
	"go.uber.org/zap"

	"github.com/guildsync/guildsync/internal/credentials"
	"github.com/guildsync/guildsync/internal/domain/models"
)

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manages the stored storefront login.",
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Prompts for the storefront login and stores it.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateCredentials(); err != nil {
			return err
		}

		store := credentials.NewFileStore(cfg.Storefront.CredentialsFile, cfg.Storefront.EncryptionKey)
		cred, err := promptCredential(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if err := store.Write(cred); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "credentials saved to %s\n", store.Path)
		return nil
	},
}

func init() {
	credentialsCmd.AddCommand(credentialsSetCmd)
	rootCmd.AddCommand(credentialsCmd)
}

// promptingCredentials reads the stored login, asking for one on first use.
type promptingCredentials struct {
	store  *credentials.FileStore
	ask    func() (models.Credential, error)
	logger *zap.Logger
}

func (p *promptingCredentials) Read() (models.Credential, error) {
	if p.store.Exists() {
		return p.store.Read()
	}

	p.logger.Info("no stored credentials, prompting", zap.String("path", p.store.Path))
	cred, err := p.ask()
	if err != nil {
		return models.Credential{}, err
	}
	if err := p.store.Write(cred); err != nil {
		return models.Credential{}, err
	}
	return cred, nil
}

func promptCredential(in io.Reader, out io.Writer) (models.Credential, error) {
	ui := &input.UI{Reader: in, Writer: out}

	username, err := ui.Ask("Storefront email", &input.Options{
		Required:  true,
		HideOrder: true,
	})
	if err != nil {
		return models.Credential{}, fmt.Errorf("read username: %w", err)
	}

	password, err := ui.Ask("Storefront password", &input.Options{
		Required:  true,
		HideOrder: true,
		Mask:      isTerminal(in),
	})
	if err != nil {
		return models.Credential{}, fmt.Errorf("read password: %w", err)
	}

	return newCredential(username, password), nil
}

// newCredential trims the username only. Spaces around a password are part of it.
func newCredential(username, password string) models.Credential {
	return models.Credential{
		Username: strings.TrimSpace(username),
		Password: password,
	}
}

// isTerminal reports whether masked input can be read from in.
func isTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}
