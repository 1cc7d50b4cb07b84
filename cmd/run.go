package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formrun/internal/browser"
	"github.com/xkilldash9x/formrun/internal/config"
	"github.com/xkilldash9x/formrun/internal/observability"
	"github.com/xkilldash9x/formrun/internal/payload"
	"github.com/xkilldash9x/formrun/internal/runner"
)

const shutdownGrace = 15 * time.Second

// newRunCmd creates and configures the `run` command.
func newRunCmd() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run [url]",
		Short: "Executes one scripted interaction against the target page",
		Long: `Run opens a headless browser, navigates to the target page, pastes the
payload into the input element, clicks the trigger element, waits for the
page to settle, and tears the browser down. One session per invocation,
no retries.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			// Bind flags to their Viper keys so CLI flags override values
			// from the config file and environment variables.
			if err := viper.BindPFlag("run.payload_file", cmd.Flags().Lookup("payload-file")); err != nil {
				return err
			}
			if err := viper.BindPFlag("run.input_selector", cmd.Flags().Lookup("input-selector")); err != nil {
				return err
			}
			if err := viper.BindPFlag("run.trigger_selector", cmd.Flags().Lookup("trigger-selector")); err != nil {
				return err
			}
			if err := viper.BindPFlag("run.element_timeout", cmd.Flags().Lookup("timeout")); err != nil {
				return err
			}
			if err := viper.BindPFlag("run.settle_delay", cmd.Flags().Lookup("settle")); err != nil {
				return err
			}
			return viper.BindPFlag("browser.headless", cmd.Flags().Lookup("headless"))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Use the context passed from Execute (signal-aware).
			ctx := cmd.Context()
			logger := observability.GetLogger()

			cfg, err := config.NewConfigFromViper(viper.GetViper())
			if err != nil {
				return err
			}
			if len(args) == 1 {
				cfg.Run.TargetURL = args[0]
				if err := cfg.Run.Validate(); err != nil {
					return err
				}
			}

			text, err := payload.Load(cfg.Run.PayloadFile)
			if err != nil {
				return err
			}

			manager, err := browser.NewManager(ctx, logger, cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize browser: %w", err)
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
				defer cancel()
				if err := manager.Shutdown(shutdownCtx); err != nil {
					logger.Warn("Error during browser shutdown", zap.Error(err))
				}
			}()

			res := runner.New(manager, logger).Run(ctx, runner.Spec{
				TargetURL:       cfg.Run.TargetURL,
				Payload:         text,
				InputSelector:   cfg.Run.InputSelector,
				TriggerSelector: cfg.Run.TriggerSelector,
				ElementTimeout:  cfg.Run.ElementTimeout,
				SettleDelay:     cfg.Run.SettleDelay,
			})

			if !res.OK() {
				if errors.Is(res.Failure, context.Canceled) {
					return fmt.Errorf("run aborted by user signal")
				}
				return fmt.Errorf("run %s failed: %s", res.RunID, res.Failure.Reason())
			}

			fmt.Printf("Run completed successfully. Run ID: %s\n", res.RunID)
			return nil
		},
	}

	runCmd.Flags().StringP("payload-file", "p", "", "Payload file to inject ('-' for stdin, empty for the built-in sample). (Overrides config/env)")
	runCmd.Flags().String("input-selector", "#json-text", "CSS selector of the input element. (Overrides config/env)")
	runCmd.Flags().String("trigger-selector", "#submit-button", "CSS selector of the element to click. (Overrides config/env)")
	runCmd.Flags().DurationP("timeout", "t", 10*time.Second, "Maximum wait for each element. (Overrides config/env)")
	runCmd.Flags().Duration("settle", 2*time.Second, "Pause after clicking the trigger. (Overrides config/env)")
	runCmd.Flags().Bool("headless", true, "Run the browser without a visible window. (Overrides config/env)")

	return runCmd
}
