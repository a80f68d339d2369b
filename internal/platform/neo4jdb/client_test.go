package neo4jdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

func TestNewWithoutURIIsDisabled(t *testing.T) {
	c, err := New(nil, Config{URI: "  "})
	if err != nil || c != nil {
		t.Fatalf("want (nil, nil), got (%v, %v)", c, err)
	}
	if c.Enabled() {
		t.Fatalf("nil client reports enabled")
	}
	if err := c.Write(context.Background(), func(neo4j.ManagedTransaction) error { return nil }); !errors.Is(err, ErrDisabled) {
		t.Fatalf("write on nil client: %v", err)
	}
	if _, err := c.Read(context.Background(), func(neo4j.ManagedTransaction) (any, error) { return nil, nil }); !errors.Is(err, ErrDisabled) {
		t.Fatalf("read on nil client: %v", err)
	}
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestConfigNormalized(t *testing.T) {
	got := Config{URI: " neo4j://graph:7687 ", User: " "}.normalized()
	if got.URI != "neo4j://graph:7687" || got.User != "neo4j" || got.Timeout != 10*time.Second || got.MaxPoolSize != 50 {
		t.Fatalf("normalized: %+v", got)
	}
}
