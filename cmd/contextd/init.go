package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/obitus-ai/contextd/internal/config"
)

// initCmd walks through an interactive form and writes a starter config.
func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Generate a configuration file interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			path := "contextd.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", path)
			}

			var (
				listen        = ":8420"
				bearerToken   string
				maxTokens     = "4000"
				sweepInterval = "30m"
				idleTTL       = "6h"
				storePath     string
				sumBaseURL    string
				sumModel      = "gpt-4o-mini"
				sumKeyEnv     = "OPENAI_API_KEY"
				useSummarizer = true
				useMCP        bool
			)

			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().
						Title("Listen address").
						Description("Bind address for the admin HTTP API").
						Value(&listen),
					huh.NewInput().
						Title("Bearer token").
						Description("Protects admin endpoints (empty leaves them unmounted)").
						Value(&bearerToken),
					huh.NewInput().
						Title("Token budget").
						Description("Summarization trigger budget per conversation").
						Value(&maxTokens).
						Validate(func(s string) error {
							if _, err := strconv.Atoi(s); err != nil {
								return fmt.Errorf("must be an integer")
							}
							return nil
						}),
				),
				huh.NewGroup(
					huh.NewInput().
						Title("Sweep interval").
						Description("How often idle buffers are evicted").
						Value(&sweepInterval),
					huh.NewInput().
						Title("Idle TTL").
						Description("Idle age past which a buffer is evicted").
						Value(&idleTTL),
					huh.NewInput().
						Title("SQLite store path").
						Description("Persisted-message database for resume (empty disables)").
						Value(&storePath),
				),
				huh.NewGroup(
					huh.NewConfirm().
						Title("Configure a summarizer endpoint?").
						Value(&useSummarizer),
					huh.NewInput().
						Title("Summarizer base URL").
						Description("OpenAI-compatible endpoint, e.g. https://api.openai.com/v1").
						Value(&sumBaseURL),
					huh.NewInput().
						Title("Summarizer model").
						Value(&sumModel),
					huh.NewInput().
						Title("API key environment variable").
						Value(&sumKeyEnv),
					huh.NewConfirm().
						Title("Expose MCP tools under /mcp?").
						Value(&useMCP),
				),
			)
			if err := form.Run(); err != nil {
				return err
			}

			budget, _ := strconv.Atoi(maxTokens)
			cfg := config.Config{
				Buffer:  config.BufferConfig{MaxTokens: budget},
				Sweep:   config.SweepConfig{Interval: sweepInterval, IdleTTL: idleTTL},
				Gateway: config.GatewayConfig{Listen: listen, BearerToken: bearerToken, EnableMCP: useMCP},
			}
			if storePath != "" {
				cfg.Store = &config.StoreConfig{Path: storePath}
			}
			if useSummarizer && sumBaseURL != "" {
				cfg.Summarizer = &config.SummarizerConfig{
					BaseURL:   sumBaseURL,
					APIKeyEnv: sumKeyEnv,
					Model:     sumModel,
				}
			}

			data, err := yaml.Marshal(&cfg)
			if err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}

			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}
	return cmd
}
