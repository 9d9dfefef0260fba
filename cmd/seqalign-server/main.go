// Command seqalign-server provides a REST API over a pool of aligners.
//
// Usage:
//
//	seqalign-server [flags]
//
// Flags:
//
//	-c, --config   TOML config file
//	    --addr     address to listen on, overrides the config
//	-j, --threads  number of aligners, overrides the config
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/aria-lang/seqalign/internal/config"
	"github.com/aria-lang/seqalign/pkg/seqalign"
	"github.com/mattn/go-colorable"
	"github.com/pkg/errors"
	"github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

var log *logging.Logger

func init() {
	var stderr io.Writer = os.Stderr
	if runtime.GOOS == "windows" {
		stderr = colorable.NewColorableStderr()
	}
	backend := logging.NewLogBackend(stderr, "", 0)
	format := logging.MustStringFormatter(`%{time:15:04:05.000} %{color}[%{level:.4s}]%{color:reset} %{message}`)
	logging.SetBackend(logging.NewBackendFormatter(backend, format))
	log = logging.MustGetLogger("seqalign")
}

var rootCmd = &cobra.Command{
	Use:   "seqalign-server",
	Short: "REST API for pairwise alignment and alignment profiling",
	Long: fmt.Sprintf(`seqalign-server v%s

Serves alignment and profiling requests from a fixed pool of aligners.
Aligner caches are loaded from cache.in-dir at start and flushed to
cache.out-dir on shutdown.

`, seqalign.Version),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := serverConfig(cmd)
		if err != nil {
			return err
		}
		return serve(cfg)
	},
}

func init() {
	rootCmd.Flags().StringP("config", "c", "", "TOML config file")
	rootCmd.Flags().String("addr", "", "address to listen on, overrides the config")
	rootCmd.Flags().IntP("threads", "j", 0, "number of aligners, overrides the config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func serverConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if file, _ := cmd.Flags().GetString("config"); file != "" {
		var err error
		if cfg, err = config.Load(file); err != nil {
			return nil, err
		}
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if threads, _ := cmd.Flags().GetInt("threads"); threads > 0 {
		cfg.Threads = threads
	}
	return cfg, cfg.Validate()
}

func serve(cfg *config.Config) error {
	p, err := cfg.NewPool(nil)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(p, cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: time.Duration(cfg.Server.RequestTimeout+15) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			log.Errorf("could not gracefully shutdown: %s", err)
		}
		close(done)
	}()

	log.Infof("seqalign-server v%s listening on %s with %d aligners", seqalign.Version, cfg.Server.Addr, p.Size())
	if err = server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		p.Close()
		return errors.Wrapf(err, "could not listen on %s", cfg.Server.Addr)
	}

	<-done
	if err = p.CloseTimeout(30 * time.Second); err != nil {
		return err
	}
	if cfg.Cache.OutDir != "" {
		log.Infof("aligner caches saved to %s", cfg.Cache.OutDir)
	}
	log.Info("server stopped")
	return nil
}
