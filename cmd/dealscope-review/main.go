package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"dealscope/internal/classifier"
	"dealscope/internal/config"
	"dealscope/internal/corpus"
	"dealscope/internal/domain"
	"dealscope/internal/embedding/hashing"
	"dealscope/internal/embedding/openai"
	"dealscope/internal/evaluator"
	"dealscope/internal/features"
	"dealscope/internal/logging"
	"dealscope/internal/similarity"
	"dealscope/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New()

	var emb domain.Embedder
	switch cfg.Evaluator.Embedder {
	case "hashing", "":
		emb = hashing.NewEmbedder(cfg.Evaluator.Dimension)
	case "openai":
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Evaluator.OpenAI.BaseURL,
			APIKeyEnv: cfg.Evaluator.OpenAI.APIKeyEnv,
			Model:     cfg.Evaluator.OpenAI.Model,
			Dimension: cfg.Evaluator.Dimension,
			Timeout:   time.Duration(cfg.Evaluator.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		emb = client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Evaluator.Embedder)
	}

	dataDir := cfg.Evaluator.DataDir
	store := corpus.NewStore(filepath.Join(dataDir, "corpus.json"), emb, logger)
	if store.Len() == 0 {
		fmt.Println("No listings in the corpus yet. Run dealscope first.")
		os.Exit(0)
	}

	index := similarity.NewIndex(store, emb)
	extractor := features.NewExtractor(emb)
	dealClf := classifier.New(filepath.Join(dataDir, "deal_classifier.gob"), logger)
	interestClf := classifier.New(filepath.Join(dataDir, "interest_classifier.gob"), logger)
	eval := evaluator.New(store, index, extractor, dealClf, interestClf, logger,
		cfg.Evaluator.TopK, cfg.Evaluator.Threshold)

	m := tui.New(eval, store.Unreviewed())
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}
