package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"marlang/agent"
	"marlang/app"
	"marlang/cmd/api/auth"
	"marlang/config"
	"marlang/models"
	"marlang/repositories"
)

var (
	triggerFlag string
	forceSeed   bool
	tokenSub    string
	tokenRole   string
)

var rootCmd = &cobra.Command{
	Use:   "agentctl",
	Short: "Operate the Marlang posting agent",
	Long:  `Seed, inspect and run the AI persona that writes Marlang's blog posts.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.InitApp()
		config.InitLogger(config.GetConfig().Logging)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate one post now",
	RunE: func(cmd *cobra.Command, args []string) error {
		trigger := agent.Trigger(triggerFlag)
		if trigger != agent.TriggerManual && trigger != agent.TriggerScheduled {
			return fmt.Errorf("unknown trigger %q", triggerFlag)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		a, err := app.New(ctx, config.GetConfig())
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		res, err := a.Runner.Run(ctx, trigger)
		if encErr := printJSON(cmd.OutOrStdout(), res); encErr != nil {
			return encErr
		}
		return err
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the default persona if the agent document does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.GetConfig()
		store, err := app.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		written, err := seedAgent(cmd.Context(), store, cfg.Agent.ID, forceSeed, time.Now())
		if err != nil {
			return err
		}
		if written {
			fmt.Fprintf(cmd.OutOrStdout(), "agent %s seeded\n", cfg.Agent.ID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "agent %s already exists (use --force to overwrite)\n", cfg.Agent.ID)
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the agent document as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.GetConfig()
		store, err := app.OpenStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer store.Close(context.Background())

		ac, err := store.GetAgent(cmd.Context(), cfg.Agent.ID)
		if err != nil {
			return err
		}
		out, err := renderAgent(ac)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an API access token (JWT_SECRET must be set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenSub == "" {
			return fmt.Errorf("--sub is required")
		}
		m, err := auth.NewJWTManagerFromEnv()
		if err != nil {
			return err
		}
		tok, err := m.Sign(tokenSub, tokenRole)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&triggerFlag, "trigger", string(agent.TriggerManual), "manual | scheduled")
	seedCmd.Flags().BoolVar(&forceSeed, "force", false, "Overwrite an existing agent document")
	tokenCmd.Flags().StringVar(&tokenSub, "sub", "", "Subject (user id) of the token")
	tokenCmd.Flags().StringVar(&tokenRole, "role", auth.RoleAdmin, "Role claim")

	rootCmd.AddCommand(runCmd, seedCmd, showCmd, tokenCmd)
}

// seedAgent writes DefaultAgentConfig under id unless a document already
// exists and force is false. It reports whether it wrote.
func seedAgent(ctx context.Context, store repositories.AgentStore, id string, force bool, now time.Time) (bool, error) {
	if !force {
		exists, err := store.AgentExists(ctx, id)
		if err != nil {
			return false, err
		}
		if exists {
			return false, nil
		}
	}
	cfg := models.DefaultAgentConfig()
	cfg.ID = id
	cfg.UpdatedAt = now.UTC()
	if err := store.PutAgent(ctx, &cfg); err != nil {
		return false, err
	}
	return true, nil
}

func renderAgent(cfg *models.AgentConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
