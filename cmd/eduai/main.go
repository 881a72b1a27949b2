package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eduai/assistant/internal/extract"
	"github.com/eduai/assistant/internal/grader"
	"github.com/eduai/assistant/internal/handler"
	"github.com/eduai/assistant/internal/llm"
	"github.com/eduai/assistant/internal/llm/prompts"
	"github.com/eduai/assistant/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "eduai",
		Short: "AI assignment grading service",
	}

	serve := serveCmd()
	root.AddCommand(serve, gradeCmd(), exportCmd())

	// Make "serve" the default when no subcommand is given.
	root.RunE = serve.RunE

	// Register serve flags on root so bare `eduai --addr ...` still works.
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP grading server",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("addr", "a", ":8080", "HTTP listen address")
	f.String("db", "eduai.db", "SQLite database path")
	addLLMFlags(f)
	addGradingFlags(f)
	addLogFlags(f)
	return cmd
}

func gradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade FILE",
		Short: "Grade a single submission file and print the record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runGrade,
	}
	f := cmd.Flags()
	f.String("db", "eduai.db", "SQLite database path (used with --save)")
	f.String("student", "", "Student name")
	f.String("roll", "", "Roll number")
	f.String("subject", "", "Subject name")
	f.Bool("save", false, "Also store the graded record in the database")
	addLLMFlags(f)
	addGradingFlags(f)
	addLogFlags(f)
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export stored submissions as JSON",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.String("db", "eduai.db", "SQLite database path")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	addLogFlags(f)
	return cmd
}

func addLLMFlags(f *pflag.FlagSet) {
	f.String("llm-provider", "openai", "LLM provider (openai, gemini)")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
}

func addGradingFlags(f *pflag.FlagSet) {
	f.Int("pages-per-chunk", 5, "Pages graded per LLM call")
	f.Int("max-attempts", 3, "Attempts per chunk before it is skipped")
	f.Duration("backoff-base", 2*time.Second, "First retry delay, doubling each attempt")
	f.Duration("call-timeout", 2*time.Minute, "Per-attempt timeout on LLM calls")
	f.String("prompt-variant", string(prompts.PromptStandard), "Grading prompt variant (strict, standard, lenient)")
}

func addLogFlags(f *pflag.FlagSet) {
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("EDUAI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("eduai")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/eduai")
	v.AddConfigPath("/etc/eduai")
	v.AddConfigPath("/data")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func newGrader(v *viper.Viper) (*grader.Grader, error) {
	gen, err := llm.New(llm.Config{
		Provider: v.GetString("llm-provider"),
		BaseURL:  v.GetString("llm-url"),
		APIKey:   v.GetString("llm-key"),
		Model:    v.GetString("llm-model"),
	})
	if err != nil {
		return nil, fmt.Errorf("create LLM client: %w", err)
	}
	if err := gen.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("LLM health check: %w", err)
	}
	slog.Info("LLM endpoint OK",
		"provider", v.GetString("llm-provider"),
		"model", v.GetString("llm-model"),
	)

	promptVariant := strings.ToLower(strings.TrimSpace(v.GetString("prompt-variant")))
	if !prompts.IsValidVariant(promptVariant) {
		slog.Warn("invalid prompt-variant, using standard", "variant", promptVariant)
		promptVariant = string(prompts.PromptStandard)
	}

	cfg := grader.Config{
		PagesPerChunk: v.GetInt("pages-per-chunk"),
		MaxAttempts:   v.GetInt("max-attempts"),
		BackoffBase:   v.GetDuration("backoff-base"),
		CallTimeout:   v.GetDuration("call-timeout"),
		PromptVariant: prompts.PromptVariant(promptVariant),
	}
	return grader.New(gen, extract.Auto{}, cfg), nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	g, err := newGrader(v)
	if err != nil {
		return err
	}

	h := handler.New(db, g)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	h.Routes(r)

	addr := v.GetString("addr")
	slog.Info("starting server",
		"addr", addr,
		"provider", v.GetString("llm-provider"),
		"model", v.GetString("llm-model"),
		"pages_per_chunk", v.GetInt("pages-per-chunk"),
		"max_attempts", v.GetInt("max-attempts"),
		"prompt_variant", v.GetString("prompt-variant"),
	)
	return http.ListenAndServe(addr, r)
}

func runGrade(cmd *cobra.Command, args []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	doc, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	g, err := newGrader(v)
	if err != nil {
		return err
	}

	sub := grader.Submission{
		StudentName: v.GetString("student"),
		RollNumber:  v.GetString("roll"),
		Subject:     v.GetString("subject"),
	}
	rec := g.Grade(cmd.Context(), doc, sub)

	if v.GetBool("save") {
		db, err := store.New(v.GetString("db"))
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		id, err := db.InsertSubmission(rec, sub.Subject)
		if err != nil {
			return fmt.Errorf("store submission: %w", err)
		}
		slog.Info("submission saved", "id", id)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	export, err := db.ExportAll()
	if err != nil {
		return fmt.Errorf("export submissions: %w", err)
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}
