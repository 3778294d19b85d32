// File path: cmd/css/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/jbrewton2/contract-security-studio/internal/api"
	"github.com/jbrewton2/contract-security-studio/internal/common"
	"github.com/jbrewton2/contract-security-studio/internal/jobs"
	"github.com/jbrewton2/contract-security-studio/internal/llm"
	"github.com/jbrewton2/contract-security-studio/internal/storage"
	"github.com/jbrewton2/contract-security-studio/internal/vector"
)

func main() {
	logger := common.Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		logger.Warn("css: .env file not loaded", "error", err)
	} else {
		logger.Info("css: environment loaded from .env")
	}

	addr := flag.String("addr", ":8082", "listen address")
	dataDir := flag.String("data", defaultDataDir(), "directory for review artifacts (PDFs, extraction cache)")
	runsPath := flag.String("runs", defaultRunsPath(), "path to the SQLite analysis-run database")

	autoStartDefault := false
	if env := strings.TrimSpace(os.Getenv("CSS_AUTOSTART")); env != "" {
		if parsed, err := strconv.ParseBool(env); err == nil {
			autoStartDefault = parsed
		}
	}
	autoStartChroma := flag.Bool("auto-start-chroma", autoStartDefault, "automatically launch a local ChromaDB server")
	flag.Parse()

	logger.Info("css: startup initiated", "addr", *addr, "data", *dataDir)

	if *autoStartChroma {
		service, serviceErr := startChroma(ctx, logger)
		if serviceErr != nil {
			logger.Error("css: failed to launch chromadb", "error", serviceErr)
			fmt.Println("chromadb startup error:", serviceErr)
			os.Exit(1)
		}
		defer stopManagedService(context.Background(), service, logger)
	}

	provider := llm.NewProvider()
	logger.Info("css: llm provider ready", "provider", provider.Name())

	vectorClient, err := vector.NewFromEnv(ctx)
	if err != nil {
		logger.Error("css: chromadb client construction failed", "error", err)
		fmt.Println("vector store error:", err)
		os.Exit(1)
	}
	if vectorClient.Available() {
		logger.Info("css: chromadb available", "collection", vectorClient.Collection())
	} else {
		logger.Warn("css: chromadb unreachable", "collection", vectorClient.Collection())
	}
	defer vectorClient.Close()

	artifacts, err := storage.NewFSProvider(*dataDir)
	if err != nil {
		logger.Error("css: artifact store construction failed", "error", err)
		fmt.Println("artifact store error:", err)
		os.Exit(1)
	}

	runs, err := jobs.Open(*runsPath)
	if err != nil {
		logger.Error("css: run store construction failed", "error", err)
		fmt.Println("run store error:", err)
		os.Exit(1)
	}
	defer runs.Close()

	server, err := api.NewServer(provider, vectorClient, artifacts, runs)
	if err != nil {
		logger.Error("css: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("css: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	reachable := *addr
	if strings.HasPrefix(reachable, ":") {
		reachable = "localhost" + reachable
	}
	logger.Info("css: verify reachability", "suggestion", fmt.Sprintf("curl http://%s/healthz", reachable))
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("css: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func defaultDataDir() string {
	return filepath.Join("data", "artifacts")
}

func defaultRunsPath() string {
	return filepath.Join("data", "runs.db")
}
