// Command circled is the development circle service.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idilsaglam/circles/internal/config"
	"github.com/idilsaglam/circles/internal/logging"
	"github.com/idilsaglam/circles/internal/server"
	"github.com/idilsaglam/circles/internal/store"
	"github.com/idilsaglam/circles/internal/store/jsonstore"
	"github.com/idilsaglam/circles/internal/store/sqlstore"
	"github.com/idilsaglam/circles/internal/ui"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "circled",
	Short:         "Development circle service",
	SilenceErrors: true,
	SilenceUsage:  true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the circle collection and avatar uploads",
	Long: `Serve the REST collection under /api/circles and avatar uploads at
/upload.do. Requests need a bearer token when server.jwt_secret is set;
mint one with "circled token".`,
	RunE: runServe,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development token signed with server.jwt_secret",
	RunE:  runToken,
}

var (
	serveAddr  string
	serveStore string
	tokenSub   string
	tokenTTL   time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/circles/config.toml)")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
	serveCmd.Flags().StringVar(&serveStore, "store", "", "sqlite or json (default server.store)")
	tokenCmd.Flags().StringVar(&tokenSub, "sub", "admin", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime, 0 for none")
	rootCmd.AddCommand(serveCmd, tokenCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.Fail(os.Stderr, err.Error())
		stop()
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveStore != "" {
		cfg.Server.Store = serveStore
	}

	log, err := logging.New(cfg.Log, false)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := openStore(cfg.Server)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()

	if cfg.Server.JWTSecret == "" {
		log.Warn("server.jwt_secret is empty, requests are not authenticated")
	}
	srv := server.New(st, server.Options{
		UploadDir:   cfg.Server.UploadDir,
		JWTSecret:   []byte(cfg.Server.JWTSecret),
		MaxUploadMB: cfg.Server.MaxUploadMB,
	}, log)
	log.Info("store opened", zap.String("kind", cfg.Server.Store))
	return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
}

func openStore(cfg config.ServerConfig) (store.Store, error) {
	switch cfg.Store {
	case "sqlite":
		return sqlstore.Open(cfg.DSN)
	case "json":
		return jsonstore.Open(cfg.JSONPath)
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Server.JWTSecret == "" {
		return errors.New("server.jwt_secret is not set")
	}
	tok, err := server.IssueToken([]byte(cfg.Server.JWTSecret), tokenSub, tokenTTL)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), tok)
	return nil
}
