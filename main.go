package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/api"
	"github.com/rpupo63/blog-backend/config"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/services"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(config.New())
	setupLogger(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.Open(startupCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("db_type", cfg.DBType).Msg("Error connecting to database")
	}
	log.Info().Str("db_type", db.Backend()).Msg("Connected to database")

	posts := services.NewPostService(db.PostRepo(), services.NewFileMirror(cfg.PostsDir), nil)

	var notifier services.ContactNotifier
	if cfg.NotifierEnabled() {
		notifier = services.NewResendNotifier(cfg.ResendAPIKey, cfg.ResendFromEmail, []string{cfg.ContactNotifyEmail})
	} else {
		log.Info().Msg("Contact notifications disabled")
	}
	contacts := services.NewContactService(db.ContactRepo(), notifier, nil)

	if _, err := posts.SeedFromFiles(startupCtx, cfg.PostsDir); err != nil {
		log.Error().Err(err).Str("dir", cfg.PostsDir).Msg("Seeding posts failed")
	}

	errChannel := newShutdownChannel()

	server, err := api.NewServer(cfg, posts, contacts)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer closeCancel()
	if err := db.Close(closeCtx); err != nil {
		log.Error().Err(err).Msg("Error closing database")
	}
}

// setupLogger configures the global zerolog logger from LOG_LEVEL and LOG_FORMAT.
func setupLogger(cfg config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
}

// shutdownSenders counts the goroutines that report on the shutdown channel: the HTTP
// server and the interrupt listener.
const shutdownSenders = 2

// newShutdownChannel returns a channel with one slot per sender, so the sender that loses
// the race never blocks after main has stopped receiving.
func newShutdownChannel() chan error {
	return make(chan error, shutdownSenders)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
