package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"folio/internal/app"
	"folio/pkg/config"
)

var loginUsername string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in as the portfolio admin",
	Long: `Exchange admin credentials for a session token. The password is read from
Secret Manager when ADMIN_PASSWORD_SECRET is set, otherwise it is prompted for.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored admin session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.Logout(); err != nil {
			return err
		}
		fmt.Println(successStyle.Render("✓ Logged out"))
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in admin",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadService(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		admin, ok := svc.Session().CurrentAdmin()
		if !ok {
			fmt.Println(warnStyle.Render("Not logged in"))
			return nil
		}
		fmt.Println(successStyle.Render("Logged in as " + admin.DisplayName()))
		if admin.Email != "" {
			fmt.Println(mutedStyle.Render(admin.Email))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Admin username")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc, err := loadService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	username, password, err := promptCredentials(ctx, svc.Config())
	if err != nil {
		return err
	}

	admin, err := svc.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	fmt.Println(successStyle.Render("✓ Welcome, " + admin.DisplayName()))
	return nil
}

func promptCredentials(ctx context.Context, cfg *config.Config) (string, string, error) {
	username := strings.TrimSpace(loginUsername)

	password, ok, err := cfg.AdminPassword(ctx)
	if err != nil {
		slog.Warn("Failed to read admin password from Secret Manager", "error", err)
	}

	fields := make([]huh.Field, 0, 2)
	if username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&username).
			Validate(required("Username")))
	}
	if !ok {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&password).
			Validate(required("Password")))
	}

	if len(fields) > 0 {
		if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
			return "", "", err
		}
	}

	return strings.TrimSpace(username), password, nil
}

// requireLogin fails fast before any prompt when no session is stored.
func requireLogin(svc *app.Service) error {
	if _, err := svc.Session().RequireToken(); err != nil {
		return fmt.Errorf("%w, run 'folio login' first", err)
	}
	return nil
}
