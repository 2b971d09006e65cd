package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lumerapay/payadmin/internal/auth"
	"github.com/lumerapay/payadmin/internal/authz"
	"github.com/lumerapay/payadmin/internal/catalog"
	"github.com/lumerapay/payadmin/internal/config"
	"github.com/lumerapay/payadmin/internal/db/bunx"
	"github.com/lumerapay/payadmin/internal/middleware"
	"github.com/lumerapay/payadmin/internal/repository"
	"github.com/lumerapay/payadmin/internal/server"
	"github.com/lumerapay/payadmin/internal/session"
	"github.com/lumerapay/payadmin/internal/upstream"
)

// revokedTokenCleanupInterval controls how often expired denylist entries
// are pruned. Entries are only garbage once the token itself has expired,
// so the interval is generous.
const revokedTokenCleanupInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin portal API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}

		cat := catalog.Default()
		if cfg.CatalogPath != "" {
			cat, err = catalog.Load(cfg.CatalogPath)
			if err != nil {
				return fmt.Errorf("load permission catalog: %w", err)
			}
		}

		codec, err := auth.NewCodec(cfg.SessionSecret)
		if err != nil {
			return fmt.Errorf("create token codec: %w", err)
		}

		evaluator, err := authz.NewEvaluator(cat)
		if err != nil {
			return fmt.Errorf("create authorization evaluator: %w", err)
		}

		db, err := bunx.NewDB(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer bunx.Close(db)

		if err := bunx.InitSchema(cmd.Context(), db); err != nil {
			return fmt.Errorf("initialize database schema: %w", err)
		}
		log.Printf("connected to database (%s)", bunx.DetectDatabaseType(cfg.DatabaseURL))

		revokedTokens := repository.NewBunRevokedTokenRepository(db)

		router := server.NewRouter(server.Dependencies{
			Config:        cfg,
			Codec:         codec,
			Store:         auth.NewCookieStore(cfg.CookieName, cfg.CookieSecure),
			Validator:     session.NewValidator(codec, cat),
			Gate:          middleware.NewGate(evaluator),
			Upstream:      upstream.New(cfg.UpstreamURL, 10*time.Second),
			RevokedTokens: revokedTokens,
			Catalog:       cat,
		})

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		}

		cleanupCtx, stopCleanup := context.WithCancel(context.Background())
		defer stopCleanup()
		go runRevokedTokenCleanup(cleanupCtx, revokedTokens)

		errCh := make(chan error, 1)
		go func() {
			log.Printf("payadmin listening on %s", cfg.ServerAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case sig := <-sigCh:
			log.Printf("received %s, shutting down", sig)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

func runRevokedTokenCleanup(ctx context.Context, revokedTokens repository.RevokedTokenRepository) {
	ticker := time.NewTicker(revokedTokenCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := revokedTokens.DeleteExpired(ctx, time.Hour); err != nil {
				log.Printf("prune revoked tokens: %v", err)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
