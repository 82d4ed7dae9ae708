package data

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sawpanic/leveledge/internal/models"
)

func TestLoadCardsBareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	payload := `[{"ticker": "NVDA", "price": 100}, {"ticker": "AMD", "price": 150}]`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	cards, err := LoadCards(path)
	if err != nil {
		t.Fatalf("LoadCards: %v", err)
	}
	if len(cards) != 2 || cards[0].Ticker != "NVDA" || cards[1].Price != 150 {
		t.Errorf("cards = %+v", cards)
	}
}

func TestLoadCardsWrappedObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.json")
	payload := `{"cards": [{"ticker": "PLTR", "price": 25}]}`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}

	cards, err := LoadCards(path)
	if err != nil {
		t.Fatalf("LoadCards: %v", err)
	}
	if len(cards) != 1 || cards[0].Ticker != "PLTR" {
		t.Errorf("cards = %+v", cards)
	}
}

func TestLoadCardsMissingFile(t *testing.T) {
	if _, err := LoadCards(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("missing file did not error")
	}
}

func TestFileProviderSortsAndTruncates(t *testing.T) {
	root := t.TempDir()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// Write bars newest-first; the provider must sort them.
	bars := []models.Bar{
		{Timestamp: start.AddDate(0, 0, 2), Close: 102},
		{Timestamp: start, Close: 100},
		{Timestamp: start.AddDate(0, 0, 1), Close: 101},
	}
	raw, _ := json.Marshal(bars)
	if err := os.WriteFile(filepath.Join(root, "NVDA_1d.json"), raw, 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := NewFileProvider(root).Bars(context.Background(), "NVDA", "1d", 2)
	if err != nil {
		t.Fatalf("Bars: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d bars, want 2", len(got))
	}
	// Truncation keeps the newest bars, in ascending order.
	if got[0].Close != 101 || got[1].Close != 102 {
		t.Errorf("bars = %+v", got)
	}
}

func TestHTTPProviderFetchesBars(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/bars/NVDA" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("interval = %q", r.URL.Query().Get("interval"))
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"bars": []models.Bar{{Timestamp: start, Close: 100, High: 101, Low: 99, Volume: 1000}},
		})
	}))
	defer server.Close()

	provider := NewHTTPProvider(HTTPConfig{BaseURL: server.URL})
	bars, err := provider.Bars(context.Background(), "NVDA", "1d", 100)
	if err != nil {
		t.Fatalf("Bars: %v", err)
	}
	if len(bars) != 1 || bars[0].Close != 100 {
		t.Errorf("bars = %+v", bars)
	}
}

func TestHTTPProviderErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	provider := NewHTTPProvider(HTTPConfig{BaseURL: server.URL})
	if _, err := provider.Bars(context.Background(), "NVDA", "1d", 100); err == nil {
		t.Error("502 response did not error")
	}
}

func TestHTTPProviderBreakerOpensAfterFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewHTTPProvider(HTTPConfig{BaseURL: server.URL, RPS: 1000, Burst: 1000})
	for i := 0; i < 5; i++ {
		provider.Bars(context.Background(), "NVDA", "1d", 10)
	}

	// The breaker is now open; requests fail without reaching the server.
	_, err := provider.Bars(context.Background(), "NVDA", "1d", 10)
	if err == nil {
		t.Error("open breaker allowed a request through")
	}
}
