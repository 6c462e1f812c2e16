package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	evaldash "github.com/blueberrycongee/evaldash"
	"github.com/blueberrycongee/evaldash/internal/config"
	"github.com/blueberrycongee/evaldash/internal/observability"
)

type rootFlags struct {
	configPath   string
	baseURL      string
	timeout      time.Duration
	language     string
	debug        bool
	compact      bool
	metricsAddr  string
	otlpEndpoint string
	otlpProtocol string
}

// app is the state shared by all subcommands of one invocation.
type app struct {
	out    io.Writer
	errOut io.Writer
	flags  rootFlags

	cfg        *config.Config
	logger     *observability.Logger
	tracing    *observability.TracerProvider
	metricsSrv *http.Server
	swapper    *clientSwapper
}

// execute runs evalctl with args and releases everything it set up.
func execute(ctx context.Context, args []string, out, errOut io.Writer) error {
	a := &app{out: out, errOut: errOut}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	if terr := a.teardown(); terr != nil && err == nil {
		err = terr
	}
	return err
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "evalctl",
		Short:         "Query the website classifier evaluation backend",
		Long:          "evalctl calls the evaluation backend of the website classifier and prints each feature payload as JSON.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Context())
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.flags.configPath, "config", "", "path to a YAML configuration file")
	f.StringVar(&a.flags.baseURL, "base-url", "", "backend origin (overrides config and EVALDASH_API_URL)")
	f.DurationVar(&a.flags.timeout, "timeout", 0, "bound applied to every call (default 30s)")
	f.StringVar(&a.flags.language, "lang", "", "language of fixed error messages (en, id)")
	f.BoolVar(&a.flags.debug, "debug", false, "enable debug logging")
	f.BoolVar(&a.flags.compact, "compact", false, "print JSON on a single line")
	f.StringVar(&a.flags.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	f.StringVar(&a.flags.otlpEndpoint, "otlp-endpoint", "", "export traces to this OTLP endpoint")
	f.StringVar(&a.flags.otlpProtocol, "otlp-protocol", "", "OTLP protocol (grpc, http)")

	root.AddCommand(
		a.datasetCommand(),
		a.confusionMatrixCommand(),
		a.kFoldCommand(),
		a.epochTrainingCommand(),
		a.batchSizeCommand(),
		a.optimizerCommand(),
		a.evaluationCommand(),
		a.scrapeCommand(),
		a.healthCommand(),
		a.watchCommand(),
		versionCommand(),
	)
	return root
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "evalctl version %s\n", evaldash.Version)
		},
	}
}

func (a *app) setup(ctx context.Context) error {
	if err := config.LoadEnvFiles(); err != nil {
		return err
	}
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	a.applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate configuration: %w", err)
	}
	a.cfg = cfg

	logCfg := cfg.LoggerConfig()
	logCfg.Output = a.errOut
	a.logger = observability.NewLogger(logCfg, observability.NewRedactor())
	for _, w := range cfg.Warnings() {
		a.logger.Warn("configuration warning", "code", w.Code, "message", w.Message)
	}

	a.tracing, err = observability.InitTracing(ctx, observability.TracingConfigFromEnv(cfg.TracingConfig()), evaldash.Version)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}

	if cfg.Metrics.Enabled {
		if err := a.startMetrics(cfg.Metrics); err != nil {
			return err
		}
	}

	client, err := a.buildClient(cfg)
	if err != nil {
		return err
	}
	a.swapper = newClientSwapper(client)
	return nil
}

// applyFlags lets explicit flags win over file and environment.
func (a *app) applyFlags(cfg *config.Config) {
	if a.flags.baseURL != "" {
		cfg.API.BaseURL = a.flags.baseURL
	}
	if a.flags.timeout != 0 {
		cfg.API.Timeout = a.flags.timeout
	}
	if a.flags.language != "" {
		cfg.API.Language = a.flags.language
	}
	if a.flags.debug {
		cfg.Logging.Level = "debug"
	}
	if a.flags.metricsAddr != "" {
		cfg.Metrics.Enabled = true
		cfg.Metrics.Addr = a.flags.metricsAddr
	}
	if a.flags.otlpEndpoint != "" {
		cfg.Tracing.Enabled = true
		cfg.Tracing.Endpoint = a.flags.otlpEndpoint
	}
	if a.flags.otlpProtocol != "" {
		cfg.Tracing.Protocol = a.flags.otlpProtocol
	}
}

// buildClient creates a client from a configuration snapshot.
func (a *app) buildClient(cfg *config.Config) (*evaldash.Client, error) {
	opts, err := cfg.ClientOptions(a.logger.Slog())
	if err != nil {
		return nil, err
	}
	client, err := evaldash.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

func (a *app) startMetrics(cfg config.MetricsConfig) error {
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen metrics: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("GET "+cfg.Path, promhttp.Handler())
	a.metricsSrv = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.metricsSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server error", "error", err)
		}
	}()
	a.logger.Info("metrics listening", "addr", ln.Addr().String(), "path", cfg.Path)
	return nil
}

func (a *app) teardown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var errs []error
	if a.swapper != nil {
		a.swapper.Close()
	}
	if a.metricsSrv != nil {
		errs = append(errs, a.metricsSrv.Shutdown(ctx))
	}
	if a.tracing != nil {
		errs = append(errs, a.tracing.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
