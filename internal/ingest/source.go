package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rshade/energyscope/internal/cache"
	"github.com/rshade/energyscope/internal/logging"
)

// maxPayloadBytes bounds a remote dataset download.
const maxPayloadBytes = 64 << 20

// DefaultHTTPTimeout applies when an HTTPSource has no client of its own.
const DefaultHTTPTimeout = 30 * time.Second

// Source fetches the raw dataset document.
type Source interface {
	Fetch(ctx context.Context) ([]byte, error)
	String() string
}

// FileSource reads the dataset from a local file.
type FileSource struct {
	Path string
}

// Fetch reads the whole file.
func (s FileSource) Fetch(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset file: %w", err)
	}
	return data, nil
}

func (s FileSource) String() string { return s.Path }

// HTTPSource downloads the dataset, reusing a cached copy while it is fresh.
// A nil Cache disables caching.
type HTTPSource struct {
	URL    string
	Client *http.Client
	Cache  *cache.FileStore
}

// Fetch returns the cached payload when available, otherwise downloads it. Only
// payloads that are valid JSON are written back to the cache.
func (s HTTPSource) Fetch(ctx context.Context) ([]byte, error) {
	log := logging.FromContext(ctx)
	key := cache.KeyForSource(s.URL)

	if s.Cache != nil && s.Cache.IsEnabled() {
		entry, err := s.Cache.Get(key)
		switch {
		case err == nil:
			log.Debug().
				Ctx(ctx).
				Str("component", "ingest").
				Str("operation", "fetch").
				Str("url", s.URL).
				Dur("age", entry.Age()).
				Msg("using cached dataset")
			return entry.Payload, nil
		case errors.Is(err, cache.ErrNotFound), errors.Is(err, cache.ErrExpired):
		default:
			log.Warn().Ctx(ctx).Str("component", "ingest").Err(err).Msg("dataset cache read failed")
		}
	}

	data, err := s.download(ctx)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil && s.Cache.IsEnabled() && json.Valid(data) {
		if putErr := s.Cache.Put(key, s.URL, data); putErr != nil {
			log.Warn().Ctx(ctx).Str("component", "ingest").Err(putErr).Msg("dataset cache write failed")
		}
	}
	return data, nil
}

func (s HTTPSource) download(ctx context.Context) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building dataset request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching dataset: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading dataset response: %w", err)
	}
	if len(data) > maxPayloadBytes {
		return nil, fmt.Errorf("dataset response exceeds %d bytes", maxPayloadBytes)
	}
	return data, nil
}

func (s HTTPSource) String() string { return s.URL }

// NewSource picks the Source for location: http(s) URLs become an HTTPSource using
// store (may be nil), anything else is read as a file path.
func NewSource(location string, client *http.Client, store *cache.FileStore) (Source, error) {
	location = strings.TrimSpace(location)
	switch {
	case location == "":
		return nil, fmt.Errorf("%w: empty location", ErrUnsupportedSource)
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return HTTPSource{URL: location, Client: client, Cache: store}, nil
	case strings.Contains(location, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, location)
	default:
		return FileSource{Path: location}, nil
	}
}

// Load fetches and parses the dataset from src. Any failure is a *LoadError.
func Load(ctx context.Context, src Source) ([]YearRecord, error) {
	log := logging.FromContext(ctx)
	log.Debug().
		Ctx(ctx).
		Str("component", "ingest").
		Str("operation", "load").
		Str("source", src.String()).
		Msg("loading energy dataset")

	data, err := src.Fetch(ctx)
	if err != nil {
		log.Error().
			Ctx(ctx).
			Str("component", "ingest").
			Err(err).
			Str("source", src.String()).
			Msg("failed to fetch dataset")
		return nil, &LoadError{Source: src.String(), Err: err}
	}

	return ParseWithContext(ctx, src.String(), data)
}
