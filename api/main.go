package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/local/easystudy/api/config"
	"github.com/local/easystudy/api/db"
	"github.com/local/easystudy/api/handlers"
	"github.com/local/easystudy/api/storage"
	"github.com/local/easystudy/api/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	printStartUpBanner()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg)

	medium, err := openMedium(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage")
	}
	st := store.New(medium)

	// Create Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// Configure CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.MaxMultipartMemory = cfg.MaxUploadSize

	handlers.New(cfg, st).Register(router)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info().
		Str("port", cfg.Port).
		Str("storage_driver", cfg.StorageDriver).
		Str("generation_provider", cfg.GenerationProvider).
		Str("video_provider", cfg.VideoProvider).
		Msg("Starting EasyStudy API server")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	if cfg.LogFile != "" {
		out = zerolog.MultiLevelWriter(out, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
}

func openMedium(cfg *config.Config) (storage.Medium, error) {
	if cfg.StorageDriver == "memory" {
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		return storage.NewMemory(), nil
	}

	database, err := db.Init(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	log.Info().Str("db_path", cfg.DBPath).Msg("Database initialized")
	return storage.NewGorm(database), nil
}

func printStartUpBanner() {
	myFigure := figure.NewFigure("EASYSTUDY", "", true)
	myFigure.Print()

	fmt.Println("======================================================")
	fmt.Printf("EASYSTUDY API (v%s)\n\n", "1.0.0")
}
