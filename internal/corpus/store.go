package corpus

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"dealscope/internal/domain"
	"dealscope/internal/logging"
)

// Store is the persisted collection of previously seen listings with their
// embeddings. Entries are ordered by insertion; a link appears at most once.
// Not safe for concurrent mutation: the process model is a single active
// writer.
type Store struct {
	path     string
	embedder domain.Embedder
	logger   *logging.Logger
	entries  []domain.CorpusEntry
	byLink   map[string]int
}

// NewStore loads the corpus from path. A missing or corrupt file degrades to
// an empty corpus with a warning, never an error.
func NewStore(path string, embedder domain.Embedder, logger *logging.Logger) *Store {
	s := &Store{
		path:     path,
		embedder: embedder,
		logger:   logger,
		byLink:   make(map[string]int),
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read corpus %s: %v", s.path, err)
		}
		return
	}
	var entries []domain.CorpusEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("corpus %s is corrupt, starting empty: %v", s.path, err)
		return
	}
	s.entries = entries
	for i := range s.entries {
		s.byLink[s.entries[i].Link] = i
	}
	s.logger.Info("loaded %d listings from %s", len(s.entries), s.path)
}

// save persists the full entry list atomically. Called after every mutation.
func (s *Store) save() {
	data, err := json.Marshal(s.entries)
	if err != nil {
		s.logger.Error("failed to encode corpus: %v", err)
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Error("failed to create corpus dir: %v", err)
		return
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		s.logger.Error("failed to write corpus: %v", err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.logger.Error("failed to replace corpus file: %v", err)
	}
}

// Add embeds the listing and appends it to the corpus. Listings without a
// link and links already present are skipped silently; the first write wins.
func (s *Store) Add(listing *domain.Listing) {
	if listing.Link == "" {
		s.logger.Warn("listing has no link, skipping add")
		return
	}
	if _, ok := s.byLink[listing.Link]; ok {
		return
	}
	embedding, err := s.embedder.Embed(listing.TextContent())
	if err != nil {
		s.logger.Warn("failed to embed listing %s: %v", listing.Link, err)
		return
	}
	entry := domain.CorpusEntry{
		Link:      listing.Link,
		Title:     listing.Title,
		Price:     listing.Price,
		Embedding: embedding,
		Details:   *listing,
	}
	s.entries = append(s.entries, entry)
	s.byLink[entry.Link] = len(s.entries) - 1
	s.save()
	s.logger.Info("added listing to corpus: %s", listing.Title)
}

// MarkReviewed flips the reviewed flag for the entry with the given link and
// persists. No-op if the link is not in the corpus.
func (s *Store) MarkReviewed(link string) {
	i, ok := s.byLink[link]
	if !ok {
		return
	}
	if s.entries[i].Reviewed {
		return
	}
	s.entries[i].Reviewed = true
	s.save()
}

// Entries returns the ordered corpus contents. Callers must not mutate.
func (s *Store) Entries() []domain.CorpusEntry { return s.entries }

// Len returns the number of stored entries.
func (s *Store) Len() int { return len(s.entries) }

// Contains reports whether a link is already in the corpus.
func (s *Store) Contains(link string) bool {
	_, ok := s.byLink[link]
	return ok
}

// Unreviewed returns entries not yet reviewed, newest first.
func (s *Store) Unreviewed() []domain.CorpusEntry {
	var out []domain.CorpusEntry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if !s.entries[i].Reviewed {
			out = append(out, s.entries[i])
		}
	}
	return out
}
