package main

import (
	auth "PalmBiomass/internal/auth"
	batch "PalmBiomass/internal/calc/batch"
	biomass "PalmBiomass/internal/calc/biomass"
	importer "PalmBiomass/internal/calc/importer"
	report "PalmBiomass/internal/calc/report"
	config "PalmBiomass/internal/config"
	repo "PalmBiomass/internal/repo"
	settings "PalmBiomass/internal/settings"
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
)

var wg sync.WaitGroup

func CORS(mux *mux.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})
}

func HandleList(mux *mux.Router, cfg config.Config, catalog *biomass.Catalog) {
	authEnv := &auth.Authenv{
		JWTkey:     cfg.TokenKey,
		AccessHash: cfg.AccessHash,
		Secure:     cfg.TLSCert != "",
	}
	settingsH := &settings.Handler{Auth: authEnv, Catalog: catalog}

	limiter := auth.NewIPRateLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	api := mux.PathPrefix("/api").Subrouter()
	api.Use(limiter.LimitMiddleware)

	api.HandleFunc("/session", authEnv.SessionHandler).Methods("POST")
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		biomass.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "default_preset": catalog.DefaultName()})
	}).Methods("GET")

	secureApi := api.PathPrefix("/user").Subrouter()
	secureApi.Use(authEnv.AuthMiddleware)

	secureApi.HandleFunc("/settings", settingsH.GetSettings).Methods("GET")
	secureApi.HandleFunc("/settings", settingsH.UpdateSettings).Methods("PUT", "PATCH")
	secureApi.HandleFunc("/settings", settingsH.ResetSettings).Methods("DELETE")

	biomassH := &biomass.Handler{Catalog: catalog}
	batchH := &batch.Handler{Catalog: catalog}
	importH := &importer.Handler{Catalog: catalog}
	reportH := &report.Handler{Catalog: catalog}

	secureApi.HandleFunc("/tools/biomass/presets", biomassH.Presets).Methods("GET")
	secureApi.HandleFunc("/tools/biomass/mass/calc", biomassH.Mass).Methods("POST")
	secureApi.HandleFunc("/tools/biomass/area/calc", biomassH.Area).Methods("POST")
	secureApi.HandleFunc("/tools/biomass/compare", biomassH.Compare).Methods("POST")
	secureApi.HandleFunc("/tools/biomass/batch", batchH.Calc).Methods("POST")
	secureApi.HandleFunc("/tools/biomass/import", importH.Import).Methods("POST")
	secureApi.HandleFunc("/tools/biomass/export", importH.Export).Methods("POST")
	secureApi.HandleFunc("/tools/biomass/report/pdf", reportH.Generate).Methods("POST")
	secureApi.HandleFunc("/tools/biomass/report/md", reportH.Markdown).Methods("POST")
	secureApi.HandleFunc("/tools/biomass/report/html", reportH.HTML).Methods("POST")
}

func main() {
	if len(os.Args) == 3 && os.Args[1] == "hash-code" {
		hash, err := auth.HashAccessCode(os.Args[2])
		if err != nil {
			log.Fatal("Error hashing access code: ", err)
		}
		fmt.Println(hash)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Configuration error: ", err)
	}
	if len(cfg.TokenKey) == 0 {
		log.Fatal("TOKEN_KEY environment variable is not set")
	}

	var presetRepo repo.PresetRepository
	if cfg.DatabaseURL != "" {
		db, err := repo.InitDB(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Preset database error: ", err)
		}
		defer db.Close()
		presetRepo = repo.NewPostgresPresetDB(db)
	}

	catalog, err := cfg.Catalog(ctx, presetRepo)
	if err != nil {
		log.Fatal("Preset catalog error: ", err)
	}
	log.Printf("Catalog ready: %d presets, default %q", len(catalog.Presets()), catalog.DefaultName())

	mux := mux.NewRouter()
	HandleList(mux, cfg, catalog)
	handler := CORS(mux)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Println("Starting server on", cfg.Addr)
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		if cfg.TLSCert != "" {
			err = server.ListenAndServeTLS(cfg.TLSCert, cfg.TLSKey)
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
			cancel()
		}
	}()

	<-ctx.Done()
	log.Println("Shutdown signal received, closing active connections")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Error stopping server: %v", err)
	}
	log.Println("Server stopped")

	wg.Wait()
}
