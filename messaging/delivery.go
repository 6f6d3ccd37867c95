// Package messaging is the boundary to the chat platform. The gateway
// hands inbound events in and gets back a list of outbound messages; how
// those are shaped depends on the platform's delivery capability.
package messaging

import (
	"context"
	"strings"
)

// Event is one inbound chat message pushed by the platform.
type Event struct {
	Platform  string `json:"platform"`
	SelfID    string `json:"self_id"`
	MessageID string `json:"message_id"`
	Message   string `json:"message"`
}

// Image is an outbound picture: a URL reference, optionally with
// prefetched bytes so the platform can inline it.
type Image struct {
	URL      string
	Data     []byte
	MimeType string
}

// OutboundImage is the wire form of an image attachment.
type OutboundImage struct {
	URL      string `json:"url,omitempty"`
	Data     []byte `json:"data,omitempty"`
	MimeType string `json:"mime_type,omitempty"`
}

// Node is one entry of a forwarded node group, carrying the bot identity
// header the platform renders per item.
type Node struct {
	UserID string         `json:"user_id"`
	Name   string         `json:"name"`
	Text   string         `json:"text,omitempty"`
	Image  *OutboundImage `json:"image,omitempty"`
}

// Outbound is one message to emit back to the platform. Exactly one of
// Text, Image or Nodes is set.
type Outbound struct {
	Text  string         `json:"text,omitempty"`
	Image *OutboundImage `json:"image,omitempty"`
	Nodes []Node         `json:"nodes,omitempty"`
}

// Deliverer shapes a preview (text blocks plus images) into outbound
// messages for one platform capability.
type Deliverer interface {
	Deliver(ctx context.Context, event Event, texts []string, images []Image) ([]Outbound, error)
}

// GroupedDeliverer bundles everything into a single forwarded node
// group, one node per text block and per image, each carrying the bot
// identity header.
type GroupedDeliverer struct {
	BotName string
}

func (d *GroupedDeliverer) Deliver(_ context.Context, event Event, texts []string, images []Image) ([]Outbound, error) {
	nodes := make([]Node, 0, len(texts)+len(images))
	for _, text := range texts {
		if text == "" {
			continue
		}
		nodes = append(nodes, Node{UserID: event.SelfID, Name: d.BotName, Text: text})
	}
	for _, img := range images {
		attachment := outboundImage(img)
		if attachment == nil {
			continue
		}
		nodes = append(nodes, Node{UserID: event.SelfID, Name: d.BotName, Image: attachment})
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return []Outbound{{Nodes: nodes}}, nil
}

// SequentialDeliverer emits one plain-text message followed by one
// message per image, for platforms without node-group support.
type SequentialDeliverer struct{}

func (d *SequentialDeliverer) Deliver(_ context.Context, _ Event, texts []string, images []Image) ([]Outbound, error) {
	var out []Outbound

	kept := make([]string, 0, len(texts))
	for _, text := range texts {
		if text != "" {
			kept = append(kept, text)
		}
	}
	if len(kept) > 0 {
		out = append(out, Outbound{Text: strings.Join(kept, "\n")})
	}

	for _, img := range images {
		if attachment := outboundImage(img); attachment != nil {
			out = append(out, Outbound{Image: attachment})
		}
	}
	return out, nil
}

func outboundImage(img Image) *OutboundImage {
	if img.URL == "" && len(img.Data) == 0 {
		return nil
	}
	return &OutboundImage{URL: img.URL, Data: img.Data, MimeType: img.MimeType}
}
