package cmd

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"folio/internal/model"
)

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Send a message to the portfolio owner",
	Args:  cobra.NoArgs,
	RunE:  runContact,
}

func init() {
	rootCmd.AddCommand(contactCmd)
}

func runContact(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	svc, err := loadService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	var form model.ContactForm
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&form.Name).
				Validate(required("Name")),
			huh.NewInput().
				Title("Email").
				Value(&form.Email).
				Validate(validEmail),
			huh.NewInput().
				Title("Subject").
				Value(&form.Subject),
			huh.NewText().
				Title("Message").
				Value(&form.Message).
				Validate(required("Message")),
		),
	).Run(); err != nil {
		return err
	}

	var message string
	err = runWithSpinner("Sending message", func() error {
		var err error
		message, err = svc.Contact(ctx, form)
		return err
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	fmt.Println(successStyle.Render(message))
	return nil
}

func validEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("Email is required")
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return fmt.Errorf("invalid email address")
	}
	return nil
}
