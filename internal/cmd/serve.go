package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"shiftcal/internal/capture"
	"shiftcal/internal/config"
	appLog "shiftcal/internal/log"
	"shiftcal/internal/store"
	"shiftcal/internal/web"
)

var (
	serveListen   string
	serveCacheDir string
	servePreview  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server with periodic feed refresh",
	Long: `Serve the JSON API and printable calendar pages, re-fetching the configured
ICS sources on the configured cron schedule. With --preview, each refresh also
captures the month page to a PNG served at /preview.png (requires Chromium).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "HTTP listen address (overrides config if set)")
	serveCmd.Flags().StringVar(&serveCacheDir, "cache-dir", "./cache", "cache root for fetched feeds and the preview capture")
	serveCmd.Flags().BoolVar(&servePreview, "preview", false, "capture a PNG of the month page after each refresh")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Listen = serveListen
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	srv, err := web.NewServer(cfg, st, serveCacheDir)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	// Warm the snapshot; a failure here is not fatal, the first request or
	// the cron refresh will retry.
	if err := srv.Refresh(ctx); err != nil {
		appLog.Error("initial refresh failed", err)
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.RefreshCron, func() {
		refreshCtx, refreshCancel := context.WithTimeout(ctx, time.Minute)
		defer refreshCancel()
		if err := srv.Refresh(refreshCtx); err != nil {
			appLog.Error("scheduled refresh failed", err)
			return
		}
		if servePreview {
			capturePreview(refreshCtx, cfg, srv.PreviewPath())
		}
	}); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	httpSrv := &http.Server{
		Addr:    cfg.Listen,
		Handler: srv.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen, "timezone", cfg.Timezone)
		errCh <- httpSrv.ListenAndServe()
	}()

	// First preview shortly after startup; the cron refresh keeps it current.
	if servePreview {
		go func() {
			select {
			case <-ctx.Done():
			case <-time.After(2 * time.Second):
				capturePreview(ctx, cfg, srv.PreviewPath())
			}
		}()
	}

	select {
	case <-ctx.Done():
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// capturePreview shoots the server's own month page into the preview file
// served at /preview.png.
func capturePreview(ctx context.Context, cfg *config.Config, path string) {
	captureCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		appLog.Error("preview capture failed", err, "path", path)
		return
	}
	if err := capture.PNG(captureCtx, capture.Options{
		URL:         "http://" + cfg.Listen + "/calendar?view=month",
		OutputPath:  path,
		PaperSize:   cfg.PaperSize,
		Orientation: cfg.Orientation,
	}); err != nil {
		appLog.Error("preview capture failed", err)
		return
	}
	appLog.Info("preview capture written", "path", path)
}
