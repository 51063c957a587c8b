package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Mas3oood/Bovali/internal/catalogue"
	"github.com/Mas3oood/Bovali/internal/history"
	"github.com/Mas3oood/Bovali/internal/http/handlers"
	"github.com/Mas3oood/Bovali/internal/http/httpapi"
	"github.com/Mas3oood/Bovali/internal/infra"
	"github.com/Mas3oood/Bovali/internal/infra/geoip"
	"github.com/Mas3oood/Bovali/internal/middleware"
	"github.com/Mas3oood/Bovali/internal/providers/drive"
	"github.com/Mas3oood/Bovali/internal/providers/gemini"
	"github.com/Mas3oood/Bovali/internal/store"
	"github.com/Mas3oood/Bovali/internal/studio"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	// Missing credentials are not fatal: the UI reads /config/status and
	// keeps the affected submit buttons disabled.
	if cerr := cfg.Validate(); cerr != nil {
		logger.Warn().Strs("missing", cerr.Missing).Msg("starting with unconfigured backends")
	}

	// Durable store for the export gallery.
	st, err := store.Open(store.Options{Driver: cfg.StoreDriver, Path: cfg.StorePath, DSN: cfg.StoreDSN})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	ctx := context.Background()
	gallery := history.NewGallery(st, &logger)
	if err := gallery.Load(ctx); err != nil {
		logger.Warn().Err(err).Msg("export gallery restore failed; starting empty")
	}

	// GeoIP is optional; without it locale detection stops at the headers.
	resolver, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip database unavailable")
	}
	defer resolver.Close()

	var lookup middleware.CountryLookup
	if resolver != nil {
		lookup = resolver.CountryCode
	}

	backends := studio.Backends{}
	if cfg.GeminiReady() {
		client, err := gemini.NewClient(gemini.Options{
			APIKey:     cfg.GeminiAPIKey,
			BaseURL:    cfg.GeminiBaseURL,
			ImageModel: cfg.GeminiImageModel,
			ChatModel:  cfg.GeminiChatModel,
			Logger:     &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build gemini client")
		}
		backends.Generator = client
		backends.Batch = gemini.NewBatcher(client, &logger)
		backends.NewDialogue = func() studio.Dialogue { return client.NewChat() }
	}

	var downloader handlers.Downloader
	if cfg.DriveReady() {
		driveClient, err := drive.NewClient(drive.Options{
			APIKey:  cfg.DriveAPIKey,
			BaseURL: cfg.DriveBaseURL,
			Logger:  &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to build drive client")
		}
		downloader = driveClient
		backends.NewCatalog = func() *catalogue.Navigator {
			return catalogue.NewNavigator(driveClient, cfg.DriveRootFolderID, "Catalogue")
		}
	}

	registry := studio.NewRegistry(cfg.SessionTTL, backends, &logger)
	app := handlers.NewApp(cfg, &logger, registry, gallery, downloader)
	router := httpapi.NewRouter(app, lookup)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
