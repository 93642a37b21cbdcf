package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestChannelStats(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("part") != "statistics" || q.Get("id") != "UC123" || q.Get("key") != "secret" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"items":[{"statistics":{"subscriberCount":"1200","viewCount":"99000","videoCount":"37","hiddenSubscriberCount":false}}]}`))
	}))
	defer server.Close()

	stats, err := NewClient(server.URL, "secret").ChannelStats(context.Background(), "UC123")
	if err != nil {
		t.Fatalf("ChannelStats error: %v", err)
	}
	if stats.SubscriberCount != 1200 || stats.ViewCount != 99000 || stats.VideoCount != 37 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestChannelStatsMissingChannel(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "secret").ChannelStats(context.Background(), "UCnope")
	if !errors.Is(err, ErrChannelNotFound) {
		t.Fatalf("expected ErrChannelNotFound, got %v", err)
	}
}

func TestChannelStatsFailures(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	if _, err := NewClient(server.URL, "secret").ChannelStats(context.Background(), "UC1"); err == nil {
		t.Fatalf("expected error on 403")
	}
	if _, err := NewClient(server.URL, "").ChannelStats(context.Background(), "UC1"); err == nil {
		t.Fatalf("expected error without api key")
	}
	if _, err := NewClient(server.URL, "secret").ChannelStats(context.Background(), ""); err == nil {
		t.Fatalf("expected error without channel id")
	}
}

func TestCounter(t *testing.T) {
	t.Parallel()

	if counter("42") != 42 || counter("") != 0 || counter("n/a") != 0 {
		t.Fatalf("unexpected counter parsing")
	}
}
