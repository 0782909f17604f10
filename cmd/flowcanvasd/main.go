// Command flowcanvasd serves the workflow editor's REST API:
// workflow CRUD, export/import, and node execution.
package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/config"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/llm"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/observability"
	"github.com/flowcanvas/flowcanvas/pkg/flowcanvas/store"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	settings := loadSettings(logger)

	st, err := store.NewSQLiteStore(settings.StorePath)
	if err != nil {
		logger.Error("open workflow store failed", "error", err.Error(), "path", settings.StorePath)
		os.Exit(1)
	}
	defer st.Close()

	var client llm.Client
	if settings.LLMEndpoint != "" {
		opts := []llm.HTTPOption{llm.WithHTTPTimeout(settings.LLMTimeout)}
		if settings.LLMAPIKey != "" {
			opts = append(opts, llm.WithAPIKey(settings.LLMAPIKey))
		}
		client = llm.NewHTTPClient(settings.LLMEndpoint, opts...)
	} else {
		logger.Warn("no llm_endpoint configured, node runs will fail")
		client = llm.NewMockClient()
	}

	runnerOpts := []flowcanvas.RunnerOption{
		flowcanvas.WithLogger(logger),
		flowcanvas.WithMetrics(observability.NewMetricsRecorder()),
	}
	if settings.DefaultModel != "" {
		runnerOpts = append(runnerOpts, flowcanvas.WithDefaultModel(settings.DefaultModel))
	}
	runner := flowcanvas.NewRunner(client, runnerOpts...)

	srv := newServer(st, runner, logger)

	logger.Info("flowcanvasd listening", "addr", settings.ListenAddr)
	if err := http.ListenAndServe(settings.ListenAddr, srv.routes()); err != nil {
		logger.Error("server stopped", "error", err.Error())
		os.Exit(1)
	}
}

// loadSettings reads the optional config file, then applies
// environment overrides.
func loadSettings(logger *slog.Logger) config.Settings {
	cfg := config.New(nil)
	if path := os.Getenv("FLOWCANVAS_CONFIG"); path != "" {
		loaded, err := config.FromFile(path)
		if err != nil {
			logger.Error("load config failed", "error", err.Error(), "path", path)
			os.Exit(1)
		}
		cfg = loaded
	}

	settings := config.Load(cfg)
	if v := os.Getenv("PORT"); v != "" {
		settings.ListenAddr = ":" + v
	}
	if v := os.Getenv("STORE_PATH"); v != "" {
		settings.StorePath = v
	}
	if v := os.Getenv("LLM_ENDPOINT"); v != "" {
		settings.LLMEndpoint = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		settings.LLMAPIKey = v
	}
	if v := os.Getenv("DEFAULT_MODEL"); v != "" {
		settings.DefaultModel = v
	}
	return settings
}
