package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Vovarama1992/medassist/internal/config"
	"github.com/Vovarama1992/medassist/internal/delivery"
	"github.com/Vovarama1992/medassist/internal/languages"
	"github.com/Vovarama1992/medassist/internal/web"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "medassist",
		Short: "Healthcare speech and text translation API",
		Long: `medassist serves medical translation, speech-to-text and text-to-speech
over HTTP, backed by hosted or self-hosted models.

Without a subcommand it starts the HTTP server.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(speakCmd())
	rootCmd.AddCommand(languagesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and browser UI",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {

	// =========================================================================
	// CONFIG / LOGGER
	// =========================================================================

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	baseLogger, err := newZap(cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer baseLogger.Sync()
	sugar := baseLogger.Sugar()
	zl := logger.NewZapLogger(sugar)

	// =========================================================================
	// SERVICES
	// =========================================================================

	app, err := buildApp(cmd.Context(), cfg, zl, sugar)
	if err != nil {
		return err
	}

	// =========================================================================
	// HTTP ROUTER
	// =========================================================================

	handler := delivery.NewHandler(
		app.translation,
		app.transcription,
		app.synthesis,
		app.registry,
		delivery.UploadLimit{MaxBytes: cfg.MaxUploadBytes, Label: cfg.MaxUploadLabel()},
		zl,
		sugar,
	)

	r := delivery.NewRouter(handler, delivery.RouterOptions{
		UIOrigins:      cfg.UIOrigins,
		RateLimit:      cfg.RateLimit,
		RequestTimeout: cfg.RequestTimeout,
		Metrics:        app.metrics,
		UI:             web.Handler(),
	})

	// =========================================================================
	// START SERVER
	// =========================================================================

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Log(logger.LogEntry{
			Level:   "info",
			Message: "listening at " + srv.Addr + ", max upload " + cfg.MaxUploadLabel(),
			Service: "medassist",
		})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	sugar.Infow("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func speakCmd() *cobra.Command {
	var (
		text   string
		source string
		target string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "speak",
		Short: "Synthesize speech for a piece of text into a file",
		Long: `Translate text (when source and target differ) and synthesize it with
the configured TTS provider.

Examples:
  medassist speak --text "Take this medication twice daily" --target fr
  medassist speak --text "Hola" --source es --target es --out hola.wav`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			baseLogger, err := newZap(cfg.LogDevelopment)
			if err != nil {
				return err
			}
			defer baseLogger.Sync()
			sugar := baseLogger.Sugar()

			app, err := buildApp(cmd.Context(), cfg, logger.NewZapLogger(sugar), sugar)
			if err != nil {
				return err
			}

			res, err := app.synthesis.Synthesize(cmd.Context(), text, source, target)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, res.Audio, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, voice %s)\n%s\n", out, res.ContentType, res.Voice, res.Transcript)
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "Text to speak")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Language of the text (default from TTS_DEFAULT_SOURCE_LANGUAGE)")
	cmd.Flags().StringVar(&target, "target", "en", "Language to speak in")
	cmd.Flags().StringVarP(&out, "out", "o", "output.wav", "Output file")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func languagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages",
		Run: func(cmd *cobra.Command, _ []string) {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tVOICE")
			for _, l := range languages.Default().Languages() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", l.Code, l.Name, l.Voice)
			}
			_ = tw.Flush()
		},
	}
}

func newZap(development bool) (*zap.Logger, error) {
	if development {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
