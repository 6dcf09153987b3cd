package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/suphotsudsee/study-leave-web/internal/config"
	"github.com/suphotsudsee/study-leave-web/internal/server"
	"github.com/suphotsudsee/study-leave-web/internal/util"
)

var (
	port    = flag.Int("port", 0, "listen port (used only when config.toml does not set one)")
	devMode = flag.Bool("dev", false, "development mode")
	dataDir = flag.String("dataDir", "", "data directory (overrides the config file)")
	open    = flag.Bool("open", false, "open the browser after start")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Study Leave Records")
	fmt.Println("==========================================")

	cfg, info, err := config.LoadConfigWithInfo()
	if err != nil {
		log.Printf("failed to load config, using defaults: %v", err)
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}
	if info.Path != "" {
		fmt.Printf("Config: %s\n", info.Path)
	}

	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}
	if *open {
		cfg.Server.OpenBrowser = true
	}

	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		log.Printf("failed to create data directory: %v", err)
	} else {
		fmt.Printf("Data directory: %s\n", dir)
	}
	driver, _ := config.DatabaseTarget(cfg)
	fmt.Printf("Database driver: %s\n", driver)

	srv, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	go func() {
		fmt.Printf("Listening on port %d ...\n", cfg.Server.Port)
		if err := srv.Run(addr); err != nil {
			log.Fatalf("server stopped: %v", err)
		}
	}()

	switch {
	case cfg.Server.DevMode:
		fmt.Printf("Development mode: visit %s\n", url)
	case cfg.Server.OpenBrowser:
		fmt.Printf("Opening browser: %s\n", url)
		if err := util.OpenBrowserWithFallback(url); err != nil {
			fmt.Printf("Could not open a browser, visit %s\n", url)
		}
	default:
		fmt.Printf("Visit %s\n", url)
	}

	fmt.Println("\nPress Ctrl+C to stop...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	if err := srv.Close(); err != nil {
		log.Printf("failed to close database: %v", err)
	}
}
