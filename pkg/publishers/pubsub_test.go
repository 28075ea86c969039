package publishers

import (
	"context"
	"strings"
	"testing"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
)

func TestGCPPubSubPublisherPublishes(t *testing.T) {
	server := pstest.NewServer()
	defer server.Close()
	t.Setenv("PUBSUB_EMULATOR_HOST", server.Addr)

	ctx := context.Background()
	client, err := pubsub.NewClient(ctx, "test-project")
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	defer client.Close()
	if _, err := client.CreateTopic(ctx, "bookmarks"); err != nil {
		t.Fatalf("create topic: %v", err)
	}

	pub, err := newGCPPubSubPublisher(ctx, PublisherConfig{
		ID:        "ps",
		Type:      TypeGCPPubSub,
		GCPPubSub: &GCPPubSubPublisherConfig{ProjectID: "test-project", Topic: "bookmarks"},
	}, nil)
	if err != nil {
		t.Fatalf("newGCPPubSubPublisher: %v", err)
	}
	fanout := NewFanout([]Publisher{pub})
	defer fanout.Close()

	if _, err := fanout.Publish(ctx, testEvent()); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	msgs := server.Messages()
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	if msgs[0].Attributes["bookmark_id"] != "42" {
		t.Fatalf("unexpected attributes %#v", msgs[0].Attributes)
	}
	if !strings.Contains(string(msgs[0].Data), `"source_name":"Home"`) {
		t.Fatalf("unexpected payload %s", msgs[0].Data)
	}
}
