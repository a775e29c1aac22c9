package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/tasklane/internal/activity"
	"github.com/twiced-technology-gmbh/tasklane/internal/clierr"
	"github.com/twiced-technology-gmbh/tasklane/internal/output"
	"github.com/twiced-technology-gmbh/tasklane/internal/task"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start a session",
	Long:  `Issues a signed session token for the given identity. Tasks are owned by the email's user ID.`,
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the logged-in identity",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().String("name", "", "display name")
	loginCmd.Flags().String("email", "", "email address")
	_ = loginCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	email = strings.TrimSpace(email)
	if err := task.ValidateEmail(email); err != nil {
		return err
	}
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}

	id, err := sessionManager(cfg).Login(name, email)
	if err != nil {
		return clierr.Wrap(clierr.PersistenceError, err)
	}
	activity.New(cfg.Dir()).Record("login", "", id.UserID, id.Email)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, id)
	}
	output.Messagef(os.Stdout, "Logged in as %s <%s>", id.Name, id.Email)
	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	id, err := currentUser(cfg)
	if err != nil {
		return err
	}
	if err := sessionManager(cfg).Logout(); err != nil {
		return clierr.Wrap(clierr.PersistenceError, err)
	}
	activity.New(cfg.Dir()).Record("logout", "", id.UserID, id.Email)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{"status": "logged_out"})
	}
	output.Messagef(os.Stdout, "Logged out %s", id.Email)
	return nil
}

func runWhoami(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	id, err := currentUser(cfg)
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, id)
	}
	output.Messagef(os.Stdout, "%s <%s>", id.Name, id.Email)
	output.Messagef(os.Stdout, "  User ID: %s", id.UserID)
	output.Messagef(os.Stdout, "  Expires: %s", id.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}
