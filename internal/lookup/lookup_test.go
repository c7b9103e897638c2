package lookup

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowProvider blocks until its context is cancelled.
type slowProvider struct{}

func (slowProvider) Lookup(ctx context.Context, _ Kind, _ string) (Result, error) {
	<-ctx.Done()
	return Result{}, ctx.Err()
}

func TestMux_Dispatch(t *testing.T) {
	mock := &MockProvider{Results: map[string]Result{
		"ephemeral": {Found: true, Payload: "lasting a very short time", Source: "mock"},
	}}
	m := NewMux(map[Kind]Provider{KindDictionary: mock}, time.Second, slog.Default())

	res, err := m.Lookup(context.Background(), KindDictionary, "ephemeral")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "lasting a very short time", res.Payload)
	assert.Equal(t, []string{"ephemeral"}, mock.Calls)
}

func TestMux_UnknownKind(t *testing.T) {
	m := NewMux(map[Kind]Provider{}, time.Second, slog.Default())

	_, err := m.Lookup(context.Background(), KindEncyclopedia, "anything")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMux_Timeout(t *testing.T) {
	m := NewMux(map[Kind]Provider{KindDictionary: slowProvider{}}, 10*time.Millisecond, slog.Default())

	start := time.Now()
	_, err := m.Lookup(context.Background(), KindDictionary, "slow")
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestMux_ProviderErrorWrapped(t *testing.T) {
	mock := &MockProvider{Err: errors.New("connection refused")}
	m := NewMux(map[Kind]Provider{KindDictionary: mock}, time.Second, slog.Default())

	_, err := m.Lookup(context.Background(), KindDictionary, "term")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestMux_MissNotAnError(t *testing.T) {
	mock := &MockProvider{}
	m := NewMux(map[Kind]Provider{KindDictionary: mock}, time.Second, slog.Default())

	res, err := m.Lookup(context.Background(), KindDictionary, "unknownterm")
	require.NoError(t, err)
	assert.False(t, res.Found)
}

const dictionaryFixture = `[
  {
    "word": "serendipity",
    "meanings": [
      {
        "partOfSpeech": "noun",
        "definitions": [
          {"definition": "a combination of events which have come together by chance", "synonyms": ["fluke"]}
        ],
        "synonyms": ["luck", "fortune"]
      }
    ]
  }
]`

func newDictionaryTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v2/entries/en/serendipity":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(dictionaryFixture))
		case "/api/v2/entries/en/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDictionaryClient_Definition(t *testing.T) {
	srv := newDictionaryTestServer(t)
	c := NewDictionaryClient(srv.URL, slog.Default())

	res, err := c.Lookup(context.Background(), KindDictionary, "serendipity")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "(noun) a combination of events which have come together by chance", res.Payload)
	assert.Equal(t, "dictionary", res.Source)
}

func TestDictionaryClient_Thesaurus(t *testing.T) {
	srv := newDictionaryTestServer(t)
	c := NewDictionaryClient(srv.URL, slog.Default())

	res, err := c.Lookup(context.Background(), KindThesaurus, "serendipity")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, "luck, fortune, fluke", res.Payload)
}

// A 404 is a miss, not an error.
func TestDictionaryClient_NotFound(t *testing.T) {
	srv := newDictionaryTestServer(t)
	c := NewDictionaryClient(srv.URL, slog.Default())

	res, err := c.Lookup(context.Background(), KindDictionary, "xyzzy")
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestDictionaryClient_ServerError(t *testing.T) {
	srv := newDictionaryTestServer(t)
	c := NewDictionaryClient(srv.URL, slog.Default())

	_, err := c.Lookup(context.Background(), KindDictionary, "broken")
	assert.Error(t, err)
}

func TestDictionaryClient_ThroughMuxTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	c := NewDictionaryClient(srv.URL, slog.Default())
	m := NewMux(map[Kind]Provider{KindDictionary: c}, 20*time.Millisecond, slog.Default())

	_, err := m.Lookup(context.Background(), KindDictionary, "slow")
	assert.ErrorIs(t, err, ErrTimeout)
}
