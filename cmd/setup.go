package cmd

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"folio/internal/gateway"
	"folio/pkg/config"
)

const envFile = ".env"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for Folio",
	Long:  `Point Folio at a portfolio API and optionally configure Google Cloud for exports and the admin password secret.`,
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("🎞  Folio Setup"))

	env, err := godotenv.Read(envFile)
	if err != nil {
		env = make(map[string]string)
	} else {
		fmt.Println(infoStyle.Render("Found existing .env, values are pre-filled"))
	}

	steps := []struct {
		name string
		fn   func(map[string]string) error
	}{
		{"Configuring API", configureAPI},
		{"Configuring Google Cloud", configureGCP},
	}

	for _, step := range steps {
		if err := step.fn(env); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	return writeEnvFile(env)
}

func configureAPI(env map[string]string) error {
	baseURL := env["API_BASE_URL"]
	if baseURL == "" {
		baseURL = config.DefaultAPIBaseURL
	}
	portfolioURL := env["PORTFOLIO_URL"]

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API base URL").
				Description(apiDescription()).
				Value(&baseURL).
				Validate(validURL(true)),
			huh.NewInput().
				Title("Portfolio feed URL").
				Description("Leave empty for <API base URL>/api/portfolio").
				Value(&portfolioURL).
				Validate(validURL(false)),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	setEnv(env, "API_BASE_URL", strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	setEnv(env, "PORTFOLIO_URL", strings.TrimSpace(portfolioURL))
	return nil
}

func configureGCP(env map[string]string) error {
	var setupGCP bool
	if err := huh.NewConfirm().
		Title("Setup Google Cloud?").
		Description("Needed for 'folio export --gcs' and reading the admin password from Secret Manager").
		Value(&setupGCP).
		Run(); err != nil {
		return err
	}
	if !setupGCP {
		return nil
	}

	project := env["GOOGLE_CLOUD_PROJECT"]
	if project == "" && commandExists("gcloud") {
		project = getActiveProject()
	}
	bucket := env["GCS_BUCKET"]
	secret := env["ADMIN_PASSWORD_SECRET"]

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Google Cloud project").
				Value(&project).
				Validate(required("Project")),
			huh.NewInput().
				Title("GCS bucket").
				Description("Gallery exports land here").
				Value(&bucket),
			huh.NewInput().
				Title("Admin password secret").
				Description("Secret Manager secret id, e.g. folio-admin-password").
				Value(&secret),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	project = strings.TrimSpace(project)
	setEnv(env, "GOOGLE_CLOUD_PROJECT", project)
	setEnv(env, "GCS_BUCKET", strings.TrimSpace(bucket))
	setEnv(env, "ADMIN_PASSWORD_SECRET", strings.TrimSpace(secret))

	if !commandExists("gcloud") {
		fmt.Println(warnStyle.Render("gcloud CLI not found - enable the Storage and Secret Manager APIs manually"))
		return nil
	}
	if err := enableGCPAPIs(project); err != nil {
		fmt.Println(warnStyle.Render(fmt.Sprintf("API enablement failed: %v", err)))
	}
	return nil
}

func getActiveProject() string {
	out, err := exec.Command("gcloud", "config", "get-value", "project").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func enableGCPAPIs(project string) error {
	apis := []string{
		"storage.googleapis.com",
		"secretmanager.googleapis.com",
	}

	return runWithSpinner("Enabling APIs", func() error {
		args := append([]string{"services", "enable"}, apis...)
		args = append(args, "--project", project)
		return runSetupCmd("gcloud", args...)
	})
}

func apiDescription() string {
	return "Serves " + strings.Join(gateway.Endpoints(), ", ")
}

func setEnv(env map[string]string, key, value string) {
	if value == "" {
		delete(env, key)
		return
	}
	env[key] = value
}

func writeEnvFile(env map[string]string) error {
	if err := godotenv.Write(env, envFile); err != nil {
		return fmt.Errorf("write %s: %w", envFile, err)
	}
	if err := os.Chmod(envFile, 0600); err != nil {
		return err
	}

	fmt.Println(successStyle.Render("✓ Wrote .env"))
	printNextSteps()
	return nil
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Browse the gallery: folio gallery --projects")
	fmt.Println("  2. Log in as admin:    folio login")
	fmt.Println("  3. Upload a video:     folio upload ./demo.mp4")
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func validURL(mandatory bool) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			if mandatory {
				return fmt.Errorf("URL is required")
			}
			return nil
		}
		u, err := url.Parse(s)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("must be an http(s) URL")
		}
		return nil
	}
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func runSetupCmd(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %s", err, stderr.String())
	}
	return nil
}

func runWithSpinner(title string, fn func() error) error {
	var err error
	_ = spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run()
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ " + title))
	return nil
}
