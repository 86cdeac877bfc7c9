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
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/loophq/go-chat-server/directory/mongorepo"
	"github.com/loophq/go-chat-server/directory/repofakes"
	"github.com/loophq/go-chat-server/identity"
	"github.com/loophq/go-chat-server/internal/config"
	"github.com/loophq/go-chat-server/internal/mongodb"
	"github.com/loophq/go-chat-server/messages"
	"github.com/loophq/go-chat-server/messages/mongostore"
	"github.com/loophq/go-chat-server/messages/storefake"
	"github.com/loophq/go-chat-server/server"
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

	c := config.New()
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx := context.Background()

	repos, store, cleanup, err := buildDependencies(ctx, c)
	if err != nil {
		return fmt.Errorf("buildDependencies: %w", err)
	}
	defer cleanup()

	verifier, err := buildVerifier(ctx, c)
	if err != nil {
		return fmt.Errorf("buildVerifier: %w", err)
	}

	chatServer, err := server.New(c, repos, verifier, store)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: chatServer}
	go listenAndServe(httpServer)
	waitForStopSignal()
	chatServer.Shutdown()
	returnError = shutdown(httpServer)
	return returnError
}

// buildDependencies wires the directory and the message store: Mongo when a
// URI is configured, in-memory fakes otherwise.
func buildDependencies(ctx context.Context, c config.Config) (server.Repos, messages.Store, func(), error) {
	noop := func() {}

	if c.GetMongoURI() == "" {
		zlog.Info().Msg("no MONGO_URI configured, using in-memory directory and message store")
		repos := server.Repos{
			Users:   repofakes.NewFakeUserRepo(),
			Tenants: repofakes.NewFakeTenantRepo(),
		}
		return repos, storefake.NewFakeMessageStore(), noop, nil
	}

	db, closeDB, err := mongodb.Connect(ctx, c.GetMongoURI(), c.GetMongoDatabase())
	if err != nil {
		return server.Repos{}, nil, noop, err
	}
	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := closeDB(shutdownCtx); err != nil {
			zlog.Err(err).Msg("error closing mongo connection")
		}
	}

	userRepo, err := mongorepo.NewUserRepo(ctx, db)
	if err != nil {
		cleanup()
		return server.Repos{}, nil, noop, err
	}
	store, err := mongostore.New(ctx, db)
	if err != nil {
		cleanup()
		return server.Repos{}, nil, noop, err
	}

	repos := server.Repos{
		Users:   userRepo,
		Tenants: mongorepo.NewTenantRepo(db),
	}
	return repos, store, cleanup, nil
}

// buildVerifier selects the credential verifier: an external OIDC issuer
// when configured, the local HMAC secret otherwise.
func buildVerifier(ctx context.Context, c config.Config) (identity.Verifier, error) {
	if issuer := c.GetOIDCIssuer(); issuer != "" {
		zlog.Info().Str("issuer", issuer).Msg("verifying credentials against external OIDC issuer")
		return identity.NewOIDCVerifier(ctx, issuer, c.GetOIDCClientID())
	}
	return identity.NewJWTVerifier(c.GetJWTSecret()), nil
}

func setupLogging(c config.Config) {
	if c.GetEnv() == "DEV" {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
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
