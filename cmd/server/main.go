package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zeusync/trackenv/internal/config"
	"github.com/zeusync/trackenv/internal/injector"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML or JSON config file")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Println("Error loading config:", err)
			os.Exit(1)
		}
		cfg = *loaded
	}

	srv, err := injector.InitializeServer(&cfg)
	if err != nil {
		fmt.Println("Error creating server:", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the server
	if err = srv.Start(ctx); err != nil {
		fmt.Println("Error starting server:", err)
		cancel()
		os.Exit(1)
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err = srv.Stop(stopCtx); err != nil {
		fmt.Println("Error stopping server:", err)
	}
}
