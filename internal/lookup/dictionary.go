package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// DictionaryClient answers dictionary and thesaurus lookups against a
// dictionaryapi.dev-compatible HTTP endpoint.
type DictionaryClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// dictionaryEntry is the wire shape returned by the dictionary API.
type dictionaryEntry struct {
	Word     string `json:"word"`
	Meanings []struct {
		PartOfSpeech string `json:"partOfSpeech"`
		Definitions  []struct {
			Definition string   `json:"definition"`
			Synonyms   []string `json:"synonyms"`
		} `json:"definitions"`
		Synonyms []string `json:"synonyms"`
	} `json:"meanings"`
}

// NewDictionaryClient creates a dictionary lookup client.
func NewDictionaryClient(baseURL string, logger *slog.Logger) *DictionaryClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &DictionaryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  logger,
	}
}

// Lookup fetches the term from the dictionary API. An HTTP 404 means the
// term is unknown and yields Found=false with no error.
func (d *DictionaryClient) Lookup(ctx context.Context, kind Kind, term string) (Result, error) {
	endpoint := d.baseURL + "/api/v2/entries/en/" + url.PathEscape(term)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("calling dictionary API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		d.logger.Debug("dictionary miss", "term", term)
		return Result{Found: false, Source: "dictionary"}, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("dictionary API returned %d: %s", resp.StatusCode, string(body))
	}

	var entries []dictionaryEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return Result{}, fmt.Errorf("decoding response: %w", err)
	}
	if len(entries) == 0 {
		return Result{Found: false, Source: "dictionary"}, nil
	}

	var payload string
	switch kind {
	case KindThesaurus:
		payload = joinSynonyms(entries[0])
	default:
		payload = firstDefinition(entries[0])
	}
	if payload == "" {
		return Result{Found: false, Source: "dictionary"}, nil
	}

	d.logger.Debug("dictionary hit", "term", term, "kind", kind)
	return Result{Found: true, Payload: payload, Source: "dictionary"}, nil
}

func firstDefinition(e dictionaryEntry) string {
	for _, m := range e.Meanings {
		for _, def := range m.Definitions {
			if def.Definition != "" {
				if m.PartOfSpeech != "" {
					return fmt.Sprintf("(%s) %s", m.PartOfSpeech, def.Definition)
				}
				return def.Definition
			}
		}
	}
	return ""
}

func joinSynonyms(e dictionaryEntry) string {
	seen := make(map[string]bool)
	var syns []string
	add := func(words []string) {
		for _, w := range words {
			if w != "" && !seen[w] {
				seen[w] = true
				syns = append(syns, w)
			}
		}
	}
	for _, m := range e.Meanings {
		add(m.Synonyms)
		for _, def := range m.Definitions {
			add(def.Synonyms)
		}
	}
	return strings.Join(syns, ", ")
}
