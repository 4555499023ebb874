package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"

	spacetraveling "github.com/eringen/spacetraveling"
	"github.com/eringen/spacetraveling/views"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		if err := runServe(); err != nil {
			log.Fatalf("spacetraveling: %v", err)
		}
	case "prebuild":
		if err := runPrebuild(); err != nil {
			log.Fatalf("spacetraveling: %v", err)
		}
	case "version":
		fmt.Printf("spacetraveling %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func loadApp() (*spacetraveling.App, error) {
	// A missing .env is fine; the environment may be set by the process manager.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := spacetraveling.LoadConfig()
	if err != nil {
		return nil, err
	}
	return spacetraveling.New(cfg, views.Default()), nil
}

func runServe() error {
	app, err := loadApp()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		app.Close()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}

func runPrebuild() error {
	app, err := loadApp()
	if err != nil {
		return err
	}
	if err := app.Init(); err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	n, err := app.Prebuild(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Prebuilt %d posts into %s\n", n, app.Config.DatabasePath)
	return nil
}

func printUsage() {
	fmt.Println(`spacetraveling - A Prismic blog front-end built with Go, Echo, and templ

Usage:
  spacetraveling [command]

Commands:
  serve       Start the web server (default)
  prebuild    Fetch the newest posts into the snapshot store
  version     Print the spacetraveling version
  help        Show this help message

Configuration is read from the environment and from a .env file in the
working directory. PRISMIC_API_ENDPOINT and SESSION_SECRET are required.`)
}
