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

	"github.com/gin-gonic/gin"

	"auctionhub/internal/auction"
	"auctionhub/internal/comps"
	"auctionhub/internal/item"
	"auctionhub/internal/llm"
	"auctionhub/internal/profile"
	"auctionhub/pkg/database"
	"auctionhub/pkg/utils"
)

func main() {
	cfg := utils.LoadConfig()

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db_error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "db": "ok"})
	})

	// LLM client is optional: without a key the description and
	// synthesizer endpoints report service-unavailable instead of
	// failing startup.
	var llmClient *llm.Client
	if cfg.GeminiAPIKey != "" {
		var err error
		llmClient, err = llm.NewClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("gemini client failed: %v", err)
		}
	} else {
		log.Println("[main] GEMINI_API_KEY not set: description + comp synthesis disabled")
	}

	root := router.Group("")

	profileRepo := profile.NewRepo(db)
	profile.NewHandler(profileRepo).RegisterRoutes(root)

	auctionRepo := auction.NewRepo(db)
	auction.NewHandler(auctionRepo, profileRepo).RegisterRoutes(root)

	itemRepo := item.NewRepo(db)
	var describer item.Describer
	if llmClient != nil {
		describer = llmClient
	}
	item.NewHandler(itemRepo, auctionRepo, describer).RegisterRoutes(root)

	extractor := comps.NewExtractor(cfg.CompsEndpoint, cfg.CompsTimeout, cfg.CompsRetries)
	compsRepo := comps.NewRepo(db)
	adapter := comps.NewAdapter(compsRepo)

	var agent comps.Agent
	if llmClient != nil {
		agent = llmClient
	} else {
		agent = unavailableAgent{}
	}
	synth := comps.NewSynthesizer(agent)
	comps.NewHandler(extractor, synth, adapter, compsRepo, itemRepo, cfg.MaxSavedCompsPerFetch).RegisterRoutes(root)

	httpSrv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP API server listening on %s", cfg.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	log.Println("server stopped")
}

// unavailableAgent stands in when no Gemini key is configured.
type unavailableAgent struct{}

func (unavailableAgent) FindComps(ctx context.Context, instructions string) (string, error) {
	return "", errors.New("comp synthesis is not configured: missing GEMINI_API_KEY")
}
