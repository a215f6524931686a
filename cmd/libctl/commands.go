package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"libraryhub/internal/adapters/persistence/repositories"
	"libraryhub/internal/config"
	"libraryhub/internal/core/services"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// openStore loads configuration and opens the configured store
func openStore() (*config.Config, repositories.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.Driver == config.DriverMemory {
		return nil, nil, errors.New("libctl needs a persistent DATABASE_URL, not memory://")
	}
	store, err := config.OpenStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, store, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "libctl",
		Short:         "LibraryHub administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newSweepCmd(),
		newCreateUserCmd(),
	)
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// OpenStore migrates on open
			if _, _, err := openStore(); err != nil {
				return err
			}
			defer config.CloseDatabase()
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the sample catalog, members and loans into an empty database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, store, err := openStore()
			if err != nil {
				return err
			}
			defer config.CloseDatabase()
			return config.NewSeeder(store).Run(cmd.Context())
		},
	}
}

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep-overdue",
		Short: "Mark active borrows past their due date as overdue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, store, err := openStore()
			if err != nil {
				return err
			}
			defer config.CloseDatabase()

			transactions := services.NewTransactionService(store, nil, nil, cfg.Loans.PeriodDays)
			n, err := transactions.SweepOverdue(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Marked %d borrows as overdue\n", n)
			return nil
		},
	}
}

func newCreateUserCmd() *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a login; the password is read from the terminal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, store, err := openStore()
			if err != nil {
				return err
			}
			defer config.CloseDatabase()

			in := bufio.NewReader(cmd.InOrStdin())
			pw, err := readPassword(cmd, in, "Password: ")
			if err != nil {
				return err
			}
			confirm, err := readPassword(cmd, in, "Confirm password: ")
			if err != nil {
				return err
			}
			if pw != confirm {
				return errors.New("passwords do not match")
			}

			auth := services.NewAuthService(store.Users(), cfg)
			user, err := auth.Signup(cmd.Context(), &services.SignupInput{Email: email, Password: pw, Name: name})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created user #%d (%s)\n", user.ID, user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

// readPassword reads a password with masking when stdin is a terminal.
// Piped input is taken a whole line at a time; only the line ending is dropped.
func readPassword(cmd *cobra.Command, in *bufio.Reader, prompt string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), prompt)

	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(bytePassword), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
