package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/alchemorsel/pantry/internal/infrastructure/config"
	"github.com/alchemorsel/pantry/internal/infrastructure/container"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
	"github.com/alchemorsel/pantry/pkg/healthcheck"
)

const (
	exitCodeSuccess = 0
	exitCodeFailure = 1
	exitCodeError   = 2
)

type healthOptions struct {
	url        string
	timeout    time.Duration
	verbose    bool
	format     string
	expect     string
	retry      int
	retryDelay time.Duration
	local      bool
}

// healthReport is the /health payload as seen by a client.
type healthReport struct {
	Status       healthcheck.Status              `json:"status"`
	Version      string                          `json:"version"`
	Timestamp    time.Time                       `json:"timestamp"`
	DurationMs   float64                         `json:"total_duration_ms"`
	Capabilities map[healthcheck.Capability]bool `json:"capabilities,omitempty"`
	Checks       []struct {
		Name       string                 `json:"name"`
		Serves     healthcheck.Capability `json:"serves,omitempty"`
		Status     healthcheck.Status     `json:"status"`
		Message    string                 `json:"message,omitempty"`
		DurationMs float64                `json:"duration_ms"`
	} `json:"checks"`
}

var reportedCapabilities = []healthcheck.Capability{healthcheck.Inventory, healthcheck.Suggestions}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	ho := &healthOptions{}

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check a running service, or the configured dependencies with --local",
		Long: `Exit codes: 0 when the status matches --expect, 1 when the service is
unhealthy (or degraded while healthy was expected), 2 when the check itself failed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to load configuration: %v\n", err)
				return &exitError{code: exitCodeError}
			}

			var code int
			if ho.local {
				code = ho.runLocal(cmd.Context(), cmd.OutOrStdout(), cfg)
			} else {
				if ho.url == "" {
					ho.url = defaultHealthURL(cfg)
				}
				code = ho.runRemote(cmd.Context(), cmd.OutOrStdout())
			}
			if code != exitCodeSuccess {
				return &exitError{code: code}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&ho.url, "url", "", "health endpoint (default: ops server of the loaded config)")
	cmd.Flags().DurationVar(&ho.timeout, "timeout", 10*time.Second, "request timeout")
	cmd.Flags().BoolVarP(&ho.verbose, "verbose", "v", false, "print every check")
	cmd.Flags().StringVar(&ho.format, "format", "text", "output format: text, json or compact")
	cmd.Flags().StringVar(&ho.expect, "expect", string(healthcheck.StatusHealthy), "expected status: healthy, degraded or unhealthy")
	cmd.Flags().IntVar(&ho.retry, "retry", 0, "retries on request failure")
	cmd.Flags().DurationVar(&ho.retryDelay, "retry-delay", time.Second, "delay between retries")
	cmd.Flags().BoolVar(&ho.local, "local", false, "run the checks in-process against the configured backends")
	return cmd
}

func defaultHealthURL(cfg *config.Config) string {
	if url := os.Getenv("PANTRY_HEALTH_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("http://localhost:%d%s", cfg.Monitoring.MetricsPort, cfg.Monitoring.HealthCheckPath)
}

func (o *healthOptions) runRemote(ctx context.Context, w io.Writer) int {
	client := &http.Client{Timeout: o.timeout}

	var lastErr error
	for attempt := 0; attempt <= o.retry; attempt++ {
		if attempt > 0 {
			if o.verbose {
				fmt.Fprintf(w, "Retrying in %v... (attempt %d/%d)\n", o.retryDelay, attempt, o.retry)
			}
			select {
			case <-ctx.Done():
				return exitCodeError
			case <-time.After(o.retryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
		if err != nil {
			fmt.Fprintf(w, "Invalid health URL: %v\n", err)
			return exitCodeError
		}
		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			if o.verbose {
				fmt.Fprintf(w, "Request failed: %v\n", err)
			}
			continue
		}

		var report healthReport
		err = json.NewDecoder(resp.Body).Decode(&report)
		resp.Body.Close()
		if err != nil {
			fmt.Fprintf(w, "Failed to decode response: %v\n", err)
			return exitCodeError
		}
		return o.output(w, report)
	}

	fmt.Fprintf(w, "Health check failed after %d attempts: %v\n", o.retry+1, lastErr)
	return exitCodeError
}

// runLocal builds the configured backends and runs their checks in-process.
func (o *healthOptions) runLocal(ctx context.Context, w io.Writer, cfg *config.Config) int {
	var (
		hc         *healthcheck.Reporter
		store      outbound.DocumentStore
		cache      *container.Cache
		completion outbound.CompletionService
		report     healthReport
	)
	err := runWith(ctx, cfg, func(ctx context.Context) error {
		checkCtx, cancel := context.WithTimeout(ctx, o.timeout)
		defer cancel()

		// Round-trip through JSON so both modes print the same report.
		data, err := json.Marshal(hc.Check(checkCtx))
		if err != nil {
			return err
		}
		return json.Unmarshal(data, &report)
	}, &hc, &store, &cache, &completion)
	if err != nil {
		fmt.Fprintf(w, "Failed to build backends: %v\n", err)
		return exitCodeError
	}
	return o.output(w, report)
}

func (o *healthOptions) output(w io.Writer, report healthReport) int {
	switch o.format {
	case "json":
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Fprintln(w, string(data))
	case "compact":
		data, _ := json.Marshal(report)
		fmt.Fprintln(w, string(data))
	default:
		fmt.Fprintf(w, "Status: %s\n", report.Status)
		if report.Version != "" {
			fmt.Fprintf(w, "Version: %s\n", report.Version)
		}
		fmt.Fprintf(w, "Duration: %.0fms\n", report.DurationMs)
		for _, c := range reportedCapabilities {
			available, known := report.Capabilities[c]
			switch {
			case !known:
			case available:
				fmt.Fprintf(w, "%s: available\n", c)
			default:
				fmt.Fprintf(w, "%s: unavailable\n", c)
			}
		}
		if o.verbose && len(report.Checks) > 0 {
			fmt.Fprintln(w, "\nChecks:")
			for _, c := range report.Checks {
				fmt.Fprintf(w, "  %s: %s", c.Name, c.Status)
				if c.Message != "" {
					fmt.Fprintf(w, " (%s)", c.Message)
				}
				fmt.Fprintf(w, " [%.0fms]\n", c.DurationMs)
			}
		}
	}
	return exitCode(report.Status, healthcheck.Status(o.expect))
}

func exitCode(status, expected healthcheck.Status) int {
	switch {
	case status == expected:
		return exitCodeSuccess
	case status == healthcheck.StatusUnhealthy, status == "":
		return exitCodeFailure
	case status == healthcheck.StatusDegraded && expected == healthcheck.StatusHealthy:
		return exitCodeFailure
	default:
		return exitCodeSuccess
	}
}
