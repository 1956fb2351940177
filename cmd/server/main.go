package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/meridianhq/go-identity-server/auth"
	"github.com/meridianhq/go-identity-server/directory"
	directoryfake "github.com/meridianhq/go-identity-server/directory/repofake"
	directorypg "github.com/meridianhq/go-identity-server/directory/repopg"
	"github.com/meridianhq/go-identity-server/internal/config"
	"github.com/meridianhq/go-identity-server/internal/jobs"
	"github.com/meridianhq/go-identity-server/internal/obs"
	"github.com/meridianhq/go-identity-server/internal/store"
	"github.com/meridianhq/go-identity-server/server"
	"github.com/meridianhq/go-identity-server/sessions"
	sessionfake "github.com/meridianhq/go-identity-server/sessions/repofake"
	sessionpg "github.com/meridianhq/go-identity-server/sessions/repopg"
	"github.com/meridianhq/go-identity-server/token"
	"github.com/meridianhq/go-identity-server/token/refresh"
	refreshfake "github.com/meridianhq/go-identity-server/token/refresh/repofake"
	refreshpg "github.com/meridianhq/go-identity-server/token/refresh/repopg"
	"github.com/meridianhq/go-identity-server/users"
	userfake "github.com/meridianhq/go-identity-server/users/repofake"
	userpg "github.com/meridianhq/go-identity-server/users/repopg"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}
	logger := obs.NewLogger(cfg.LogLevel)
	obs.Init()
	displayAppname(cfg.AppName)

	ctx := context.Background()

	var (
		userRepo      users.Repo
		directoryRepo directory.Repo
		sessionRepo   sessions.Recorder
		refreshRepo   refresh.Repo
		pinger        server.Pinger
	)
	if cfg.DatabaseURL != "" {
		pool, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("store.Connect: %w", err)
		}
		defer pool.Close()
		if err := store.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("store.Migrate: %w", err)
		}
		userRepo = userpg.New(pool)
		directoryRepo = directorypg.New(pool)
		sessionRepo = sessionpg.New(pool)
		refreshRepo = refreshpg.New(pool)
		pinger = pool
		logger.Info().Msg("using postgres store")
	} else {
		userRepo = userfake.NewFakeUserRepo()
		directoryRepo = directoryfake.NewFakeDirectoryRepo()
		sessionRepo = sessionfake.NewFakeSessionRepo()
		refreshRepo = refreshfake.NewFakeRefreshTokenRepo()
		logger.Warn().Msg("DATABASE_URL not set, using in-memory store")
	}

	tokenManager := token.New(
		token.NewHMACSigner(cfg.JWTSecret),
		token.WithAccessTokenExpiry(cfg.AccessTokenTTL),
	)
	refreshManager := refresh.NewManager(refreshRepo, refresh.WithExpiry(cfg.RefreshTokenTTL))

	authService, err := auth.NewService(
		auth.Repos{Users: userRepo, Directory: directoryRepo, Sessions: sessionRepo},
		users.NewHasher(cfg.BcryptCost),
		tokenManager,
		refreshManager,
		auth.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("auth.NewService: %w", err)
	}

	reaper, err := jobs.NewReaper(sessionRepo, refreshManager, cfg.ReaperInterval, logger)
	if err != nil {
		return fmt.Errorf("jobs.NewReaper: %w", err)
	}
	reaper.Start()
	defer func() {
		if err := reaper.Stop(); err != nil {
			logger.Warn().Err(err).Msg("reaper shutdown")
		}
	}()

	options := []server.Option{server.WithLogger(logger)}
	if pinger != nil {
		options = append(options, server.WithPinger(pinger))
	}
	srv, err := server.New(cfg, server.Deps{
		Auth:      authService,
		Tokens:    tokenManager,
		Users:     userRepo,
		Directory: directoryRepo,
	}, options...)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: cfg.Addr(), Handler: srv}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
