package main

import (
	"errors"
	"fmt"

	"github.com/bobmcallan/vire-optimizer/internal/models"
	"github.com/bobmcallan/vire-optimizer/internal/orchestrator"
	"github.com/bobmcallan/vire-optimizer/internal/schema"
	"github.com/spf13/cobra"
)

var (
	optimizeValue   float64
	optimizeTickers string
	optimizeJSON    bool
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the optimization service is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		status := application.Orchestrator.CheckHealth(cmd.Context())
		renderHealth(cmd.OutOrStdout(), status)
		if !status.Up {
			return errors.New("optimization service is not healthy")
		}
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Request a new credential from the service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cred := application.Session.Acquire(cmd.Context())
		if !cred.Present() {
			return errors.New(cred.Error)
		}
		fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Credential acquired."))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored credential",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := application.Session.Forget(cmd.Context()); err != nil {
			return fmt.Errorf("failed to remove stored credential: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Credential removed.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show service health and credential state",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Service:    %s\n", application.Gateway.BaseURL())
		fmt.Fprintf(out, "Storage:    %s\n", application.Storage.Backend())
		renderCredential(out, application.Session.Current())
		renderHealth(out, application.Orchestrator.CheckHealth(cmd.Context()))
		return nil
	},
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Submit a portfolio for optimization",
	Long: `Submit a portfolio value and a comma-separated ticker list to the
optimization service and print the optimized allocation.

A credential is requested automatically when none is stored. The service
health check runs first; a failing check prints a warning and the
submission proceeds.`,
	Example: `  vire-optimizer optimize --value 10000 --tickers "AAPL, MSFT, GOOG"`,
	RunE:    runOptimize,
}

func init() {
	optimizeCmd.Flags().Float64Var(&optimizeValue, "value", 0, "Portfolio value (required)")
	optimizeCmd.Flags().StringVar(&optimizeTickers, "tickers", "", "Comma-separated ticker symbols (required)")
	optimizeCmd.Flags().BoolVar(&optimizeJSON, "json", false, "Print the result as JSON")
	optimizeCmd.MarkFlagRequired("value")
	optimizeCmd.MarkFlagRequired("tickers")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	// An unhealthy service is reported but the submission still goes out.
	if status := application.Orchestrator.CheckHealth(ctx); !status.Up {
		fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render("Warning: "+status.Warning))
	}

	if !application.Session.Present() {
		if cred := application.Session.Acquire(ctx); !cred.Present() {
			return errors.New(cred.Error)
		}
	}
	if !application.Orchestrator.CanSubmit() {
		return orchestrator.ErrSubmissionInFlight
	}

	input := models.SubmissionInput{
		Value:   optimizeValue,
		Tickers: orchestrator.NormalizeTickers(optimizeTickers),
	}
	outcome, err := application.Orchestrator.Submit(ctx, input)
	if err != nil {
		return err
	}

	if outcome.Kind == orchestrator.OutcomeAuthRejected {
		return fmt.Errorf("%s\nRun 'vire-optimizer login' to request a new credential.", outcome.Message)
	}

	result, ok := application.Portfolio.State()
	if !ok {
		return nil
	}
	if optimizeJSON {
		data, err := schema.EncodePortfolioResult(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
	} else {
		renderPortfolio(out, result)
	}

	if result.IsError() {
		return errors.New("optimization failed")
	}
	return nil
}
