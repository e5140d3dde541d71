package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"

	"github.com/bittyphp/bitty-security/internal/config"
	"github.com/bittyphp/bitty-security/internal/db/bunx"
	"github.com/bittyphp/bitty-security/internal/middleware"
	"github.com/bittyphp/bitty-security/internal/server"
	"github.com/bittyphp/bitty-security/pkg/security"
	"github.com/bittyphp/bitty-security/pkg/security/authn"
	"github.com/bittyphp/bitty-security/pkg/security/authz"
	"github.com/bittyphp/bitty-security/pkg/security/encoder"
	"github.com/bittyphp/bitty-security/pkg/security/provider"
	"github.com/bittyphp/bitty-security/pkg/security/session"
	"github.com/bittyphp/bitty-security/pkg/security/shield"
	"github.com/bittyphp/bitty-security/pkg/security/zone"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the security server",
	Long:  `Starts the HTTP server with the configured shields guarding its routes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		users, db, err := buildUserProvider(cfg)
		if err != nil {
			return err
		}
		if db != nil {
			defer bunx.Close(db)
		}

		encoders := encoder.NewCollection(encoder.NewBcrypt(0))
		authenticator := authn.New(users, encoders)

		var authorizer authz.Authorizer
		if cfg.PolicyPath != "" {
			enforcer, err := authz.NewEnforcer(cfg.PolicyPath)
			if err != nil {
				return fmt.Errorf("load authorization policy: %w", err)
			}
			authorizer = authz.NewCasbin(enforcer)
			log.Printf("Authorization policy loaded from %s", cfg.PolicyPath)
		} else {
			authorizer = authz.NewAllowAll()
			log.Printf("No authorization policy configured; role checks are permissive")
		}

		source, err := buildSessionSource(cfg, db)
		if err != nil {
			return err
		}

		events := server.NewLogSink(cfg.Debug)

		build, err := buildShieldPipeline(cfg, authenticator, authorizer, events)
		if err != nil {
			return err
		}

		r := server.NewRouter(server.RouterOptions{
			Source:      source,
			BuildShield: build,
			LoginPath:   cfg.LoginPath,
		})

		// Wrap router with h2c for HTTP/2 cleartext support
		h2cHandler := server.NewH2CHandler(r)

		srv := &http.Server{
			Addr:         cfg.ServerAddr,
			Handler:      h2cHandler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		// Start server in goroutine
		serverErrors := make(chan error, 1)
		go func() {
			log.Printf("Starting server on %s", cfg.ServerAddr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			log.Printf("Received signal %v, shutting down gracefully", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				srv.Close()
				return fmt.Errorf("graceful shutdown failed: %w", err)
			}

			log.Printf("Server stopped")
			return nil
		}
	},
}

// buildUserProvider assembles the user lookup chain: the seed file first,
// then the database. The database handle is returned for reuse by the
// session source.
func buildUserProvider(cfg *config.Config) (provider.UserProvider, *bun.DB, error) {
	var providers []provider.UserProvider

	if cfg.UsersFile != "" {
		records, err := loadUsersFile(cfg.UsersFile)
		if err != nil {
			return nil, nil, err
		}
		providers = append(providers, provider.NewInMemory(records))
		log.Printf("Loaded %d users from %s", len(records), cfg.UsersFile)
	}

	if cfg.DatabaseURL == "" {
		return provider.NewCollection(providers...), nil, nil
	}

	db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Printf("Connected to database")
	providers = append(providers, provider.NewBun(db))

	return provider.NewCollection(providers...), db, nil
}

func loadUsersFile(path string) (map[string]provider.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}
	var records map[string]provider.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse users file %s: %w", path, err)
	}
	return records, nil
}

func buildSessionSource(cfg *config.Config, db *bun.DB) (session.Source, error) {
	switch cfg.SessionBackend {
	case "database":
		if db == nil {
			return nil, fmt.Errorf("session backend %q requires a database", cfg.SessionBackend)
		}
		return session.NewBunSource(db), nil
	default:
		idleTTL := time.Duration(cfg.SessionTTL) * time.Second
		manager := session.NewManager(cfg.SessionMaxEntries, idleTTL)
		return session.NewMemorySource(manager), nil
	}
}

// buildShieldPipeline compiles the zone rules once and returns the
// per-request shield constructor.
func buildShieldPipeline(cfg *config.Config, authenticator *authn.Authenticator, authorizer authz.Authorizer, events security.Sink) (middleware.ShieldBuilder, error) {
	formRule, err := zone.NewRule(cfg.ProtectedPattern, cfg.ProtectedRoles...)
	if err != nil {
		return nil, err
	}
	formRules := []zone.PathRule{formRule}
	formZone := zone.Config{
		Default:      true,
		TTL:          cfg.SessionTTL,
		Timeout:      cfg.SessionTimeout,
		DestroyDelay: cfg.DestroyDelay,
	}
	formCfg := shield.DefaultFormConfig()
	formCfg.LoginPath = cfg.LoginPath
	formCfg.LoginTarget = cfg.LoginTarget
	formCfg.LogoutPath = cfg.LogoutPath
	formCfg.LogoutTarget = cfg.LogoutTarget
	formCfg.UseReferrer = cfg.UseReferrer

	var basicRules []zone.PathRule
	if cfg.BasicPattern != "" {
		basicRule, err := zone.NewRule(cfg.BasicPattern, cfg.ProtectedRoles...)
		if err != nil {
			return nil, err
		}
		basicRules = append(basicRules, basicRule)
	}
	basicZone := zone.Config{
		Default:      false,
		TTL:          cfg.SessionTTL,
		Timeout:      cfg.SessionTimeout,
		DestroyDelay: cfg.DestroyDelay,
	}
	basicCfg := shield.BasicConfig{Realm: cfg.Realm}

	return func(store session.Store) shield.Shield {
		formCtx := zone.NewContext(store, cfg.ZoneName, formRules, formZone)
		shields := []shield.Shield{
			shield.NewForm(formCtx, authenticator, authorizer, events, formCfg),
		}
		if len(basicRules) > 0 {
			basicCtx := zone.NewContext(store, cfg.ZoneName+".api", basicRules, basicZone)
			shields = append(shields, shield.NewHTTPBasic(basicCtx, authenticator, authorizer, events, basicCfg))
		}
		return shield.NewCollection(shields...)
	}, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
