package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-rag-backend/internal/api"
	"portfolio-rag-backend/internal/config"
	"portfolio-rag-backend/internal/handlers"
	"portfolio-rag-backend/internal/integrations/groq"
	"portfolio-rag-backend/internal/integrations/nomic"
	"portfolio-rag-backend/internal/integrations/pinecone"
	"portfolio-rag-backend/internal/rag"
	"portfolio-rag-backend/internal/ratelimit"
	"portfolio-rag-backend/internal/services"
)

func main() {
	log.Println("Starting Portfolio RAG Backend...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	// 2. Load Persona
	persona, err := rag.LoadPersona(cfg.PersonaPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to load persona from %s: %v", cfg.PersonaPath, err)
	}
	log.Printf("Persona loaded: %s", persona.Name)

	// 3. Initialize Provider Clients
	embedder := nomic.NewClient(cfg.NomicAPIKey, cfg.EmbeddingModel, cfg.EmbedBatchSize)
	log.Println("Nomic embedding client initialized.")

	index, err := pinecone.NewClient(cfg.PineconeAPIKey, cfg.PineconeIndexName, cfg.PineconeIndexHost, cfg.QueryTimeout)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Pinecone client: %v", err)
	}
	statusCache := pinecone.NewStatusCache(index, cfg.StatusCacheTTL)
	log.Println("Pinecone client and status cache initialized.")

	llm, err := groq.NewClient(cfg.GroqAPIKey, cfg.GenerationModel, cfg.GenerationTimeout)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Groq client: %v", err)
	}
	log.Println("Groq generation client initialized.")

	// Verify the index is reachable before serving. A missing index is not
	// fatal; the pipeline reports it per request.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 10*time.Second)
	status, err := statusCache.Status(startupCtx)
	startupCancel()
	if err != nil {
		log.Printf("WARN: Could not verify vector index at startup: %v", err)
	} else if !status.Exists {
		log.Printf("WARN: Vector index %q does not exist yet. Run the embedding ingestion before serving queries.", cfg.PineconeIndexName)
	} else {
		log.Printf("Vector index %q ready with %d vectors.", cfg.PineconeIndexName, status.VectorCount)
	}

	// 4. Initialize Services and Handlers
	limiter := ratelimit.NewLimiter(cfg.RateLimitMaxMessages, cfg.RateLimitWindow)
	ragService := services.NewRAGService(embedder, index, statusCache, llm, limiter, persona, cfg)
	log.Println("RAGService initialized.")

	ragHandler := handlers.NewRAGHandlers(ragService, index, cfg)
	log.Println("RAGHandlers initialized.")

	// 5. Setup Router & Inject Dependencies
	routerDeps := api.RouterDependencies{
		RAGHandler: ragHandler,
		Config:     cfg,
	}
	router := api.NewRouter(routerDeps)
	log.Println("HTTP router configured.")

	// 6. Configure and Start HTTP Server
	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
		// Production hardening: Set timeouts to avoid Slowloris attacks
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Channel to listen for OS signals for graceful shutdown
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, syscall.SIGINT, syscall.SIGTERM)

	// Run server in a goroutine so it doesn't block
	go func() {
		log.Printf("Server starting and listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: Could not listen on %s: %v\n", cfg.HTTPPort, err)
		}
		log.Println("Server listener routine stopped.")
	}()

	// Wait for interrupt signal
	<-stopChan
	log.Println("Shutdown signal received, initiating graceful shutdown...")

	// Create a deadline context for shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("WARN: Server graceful shutdown failed: %v", err)
		log.Fatal("Forcing shutdown due to error.")
	}

	log.Println("Server shutdown complete.")
}
