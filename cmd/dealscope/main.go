package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"dealscope/internal/classifier"
	"dealscope/internal/config"
	"dealscope/internal/corpus"
	"dealscope/internal/domain"
	"dealscope/internal/embedding/hashing"
	"dealscope/internal/embedding/openai"
	"dealscope/internal/evaluator"
	"dealscope/internal/features"
	"dealscope/internal/filters"
	"dealscope/internal/logging"
	"dealscope/internal/notifier"
	"dealscope/internal/scraper"
	"dealscope/internal/similarity"
	"dealscope/internal/state"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	var backfill bool
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")
	flag.BoolVar(&backfill, "backfill", false, "Ingest matched listings into the corpus without sending notifications")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if len(cfg.Searches) == 0 {
		log.Fatalf("config %s contains no searches", cfgPath)
	}

	logger := logging.New()
	eval, store := buildEvaluator(cfg, logger)

	var discord *notifier.Discord
	if !backfill {
		webhookURL := os.Getenv(cfg.Notifier.WebhookURLEnv)
		if webhookURL == "" {
			log.Fatalf("%s not set", cfg.Notifier.WebhookURLEnv)
		}
		discord = notifier.NewDiscord(webhookURL, cfg.Notifier.Username)
	}

	statePath := filepath.Join(cfg.Evaluator.DataDir, "state.json")
	seen := state.Load(statePath, logger)

	client := scraper.NewClient(time.Duration(cfg.Poll.RequestTimeoutSecs) * time.Second)
	delay := time.Duration(cfg.Poll.DelayBetweenSearchesSecs) * time.Second

	for i, search := range cfg.Searches {
		if i > 0 {
			// Respect the site, do not hammer
			time.Sleep(delay)
		}
		logger.Info("searching: %s", search.Name)

		listings, err := client.FetchListings(search)
		if err != nil {
			logger.Error("failed to fetch listings for %s: %v", search.Name, err)
			continue
		}

		matches := 0
		for j := range listings {
			listing := &listings[j]

			oldPrice, isSeen := seen[listing.Link]
			priceChanged := isSeen && !samePrice(oldPrice, listing.Price)
			if isSeen && !priceChanged && !backfill {
				continue
			}
			if !filters.Matches(listing, search) {
				continue
			}

			if details, err := client.FetchDetails(listing.Link); err != nil {
				logger.Warn("failed to fetch details for %s: %v", listing.Link, err)
			} else {
				scraper.Merge(listing, details)
			}

			if backfill {
				eval.AddListing(listing)
				matches++
				continue
			}

			if priceChanged && oldPrice != nil {
				listing.OldPrice = oldPrice
			}
			result := eval.EvaluateDeal(listing)
			eval.AddListing(listing)

			if err := discord.Notify(listing, result, search.Name); err != nil {
				logger.Error("failed to notify for %s: %v", listing.Link, err)
				continue
			}
			seen[listing.Link] = listing.Price
			state.Save(statePath, seen, logger)
			matches++

			if matches >= search.MaxAlerts {
				break
			}
		}
		logger.Info("%d new matches for %s (corpus size %d)", matches, search.Name, store.Len())
	}

	if !backfill {
		state.Save(statePath, seen, logger)
	}
}

// buildEvaluator assembles the evaluation engine from config.
func buildEvaluator(cfg *config.Config, logger *logging.Logger) (*evaluator.Evaluator, *corpus.Store) {
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
	index := similarity.NewIndex(store, emb)
	extractor := features.NewExtractor(emb)
	dealClf := classifier.New(filepath.Join(dataDir, "deal_classifier.gob"), logger)
	interestClf := classifier.New(filepath.Join(dataDir, "interest_classifier.gob"), logger)

	return evaluator.New(store, index, extractor, dealClf, interestClf, logger,
		cfg.Evaluator.TopK, cfg.Evaluator.Threshold), store
}

func samePrice(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
