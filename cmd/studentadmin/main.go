package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/studentadmin/internal/config"
	"github.com/jask/studentadmin/internal/logging"
	"github.com/jask/studentadmin/internal/secrets"
	"github.com/jask/studentadmin/internal/session"
	"github.com/jask/studentadmin/internal/student"
	"github.com/jask/studentadmin/internal/tui"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	configPath string
	studentID  int
	stateID    int
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:          "studentadmin",
		Short:        "Terminal admin panel for students",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.studentID < 0 {
				return fmt.Errorf("--student must be positive")
			}
			cfg, log, svc, err := setup(flags.configPath)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			app := tui.New(cmd.Context(), svc, session.NewStore(), log, tui.Options{
				ToastTTL:  cfg.UI.ToastTTL,
				StudentID: flags.studentID,
				StateID:   flags.stateID,
			})
			log.Info("starting panel", zap.String("api", cfg.API.BaseURL), zap.Int("student_id", flags.studentID))
			if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
				return fmt.Errorf("run tui: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config.toml (default $HOME/.config/studentadmin/config.toml)")
	root.Flags().IntVar(&flags.studentID, "student", 0, "open the state tab for this student id")
	root.Flags().IntVar(&flags.stateID, "state", 0, "current state id of --student")

	root.AddCommand(newStatesCmd(&flags), newAdminsCmd(&flags), newLoginCmd(&flags), newLogoutCmd(&flags))
	return root
}

func newStatesCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "Print the student state catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, svc, err := setup(flags.configPath)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			states, err := svc.GetStates(cmd.Context())
			if err != nil {
				return describe("get states", err)
			}
			out := cmd.OutOrStdout()
			for _, s := range states {
				fmt.Fprintf(out, "%d\t%s\n", s.State, s.Name)
			}
			return nil
		},
	}
}

func newAdminsCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "admins",
		Short: "Print the telegram admins students can be filtered by",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, log, svc, err := setup(flags.configPath)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			admins, err := svc.GetTgAdmins(cmd.Context())
			if err != nil {
				return describe("get admins", err)
			}
			out := cmd.OutOrStdout()
			for _, a := range admins {
				fmt.Fprintln(out, a)
			}
			return nil
		},
	}
}

func setup(configPath string) (config.Config, *zap.Logger, *student.Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("logging: %w", err)
	}
	client, err := student.NewClient(student.ClientOptions{
		BaseURL: cfg.API.BaseURL,
		Token:   resolveToken(cfg, log),
		Timeout: cfg.API.Timeout,
		Logger:  log,
	})
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("student client: %w", err)
	}
	return cfg, log, client, nil
}

func describe(op string, err error) error {
	if msg, ok := student.IsAuthorization(err); ok {
		return fmt.Errorf("%s: not authorized: %s", op, msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// resolveToken prefers the env var or config value and falls back to the
// token saved by `studentadmin login`.
func resolveToken(cfg config.Config, log *zap.Logger) string {
	if tok := cfg.Token(); tok != "" {
		return tok
	}
	store, err := secrets.DefaultStore()
	if err != nil {
		log.Warn("token store unavailable", zap.Error(err))
		return ""
	}
	tok, err := store.Fetch(cfg.API.BaseURL)
	if err != nil {
		if !errors.Is(err, secrets.ErrNotFound) {
			log.Warn("read saved token", zap.Error(err))
		}
		return ""
	}
	return tok
}

func newLoginCmd(flags *rootFlags) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save an API token for the configured student service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if token == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read token: %w", err)
				}
				token = strings.TrimSpace(line)
			}
			store, err := secrets.DefaultStore()
			if err != nil {
				return err
			}
			if err := store.Save(cfg.API.BaseURL, token); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "token saved for %s\n", cfg.API.BaseURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "token value (read from stdin when empty)")
	return cmd
}

func newLogoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			store, err := secrets.DefaultStore()
			if err != nil {
				return err
			}
			if err := store.Delete(cfg.API.BaseURL); err != nil {
				return fmt.Errorf("delete token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "token removed")
			return nil
		},
	}
}
