package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"document-qa/internal/config"
	"document-qa/internal/helper"
	"document-qa/internal/pipeline"
	"document-qa/internal/server"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	docURL := flag.String("doc", "", "URL of the document to process")
	questions := flag.String("questions", "", "Questions to answer, separated by newlines, semicolons or pipes")
	serve := flag.Bool("serve", false, "Run the HTTP API server")
	addr := flag.String("addr", "", "Listen address for the HTTP server (overrides config)")
	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	cfg := loadConfig(*configPath)
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	if *serve {
		runServer(cfg)
		return
	}

	if *docURL == "" || *questions == "" {
		log.Fatal().Msg("Please provide a document URL using -doc and questions using -questions, or run with -serve")
	}
	runOnce(context.Background(), cfg, *docURL, helper.SplitQuestions(*questions))
}

func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatal().Err(err).Msg("Error loading config")
		}
		log.Debug().Str("path", path).Msg("Config file not found, using environment")
		cfg = config.FromEnv()
	}
	return cfg
}

func runOnce(ctx context.Context, cfg *config.Config, docURL string, questions []string) {
	if len(questions) == 0 {
		log.Fatal().Msg("No questions provided")
	}

	session, err := pipeline.NewSession(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing session")
	}
	defer session.Close()

	answers, err := session.Process(ctx, docURL, questions)
	if err != nil {
		log.Fatal().Err(err).Msg("Error processing document")
	}

	out := make([]map[string]string, len(answers))
	for i := range answers {
		out[i] = map[string]string{"question": questions[i], "answer": answers[i]}
	}
	helper.PrettyPrint(out)
}

func runServer(cfg *config.Config) {
	srv := server.New(cfg)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
