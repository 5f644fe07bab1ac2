package notify

import (
	"fmt"
	"strings"
)

const (
	headerBanner = "╔═══════════════════  new Update  ═══════════════════╗"
	footerBanner = "╚══════════════════════════════════════════════╝"

	// SnapshotFileName is the attachment name of the map image.
	SnapshotFileName = "screenshot.png"
)

// Payload is one status broadcast.
type Payload struct {
	CurrentPosition string
	NextDestination string
	Activity        string
	Entity          string
	Server          string
	Snapshot        []byte
}

// Message is what the client sends: Header with the attachment, then Footer
// as a separate message.
type Message struct {
	Header     string
	Footer     string
	Attachment []byte
	FileName   string
}

// Render fills the fixed template. mention is wrapped as a spoiler and its
// line omitted when empty.
func Render(p Payload, mention string) Message {
	var b strings.Builder
	b.WriteString(headerBanner)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "🔵 **Current Location:** %s\n", p.CurrentPosition)
	fmt.Fprintf(&b, "🔴 **Next Destination:** %s\n\n", p.NextDestination)
	fmt.Fprintf(&b, "✅ **Activity:** %s\n\n", p.Activity)
	fmt.Fprintf(&b, "🦖 **Entity:** %s\n", p.Entity)
	fmt.Fprintf(&b, "🌍 **Server:** %s", p.Server)
	if m := strings.TrimSpace(mention); m != "" {
		fmt.Fprintf(&b, "\n||%s||", m)
	}

	return Message{
		Header:     b.String(),
		Footer:     footerBanner,
		Attachment: p.Snapshot,
		FileName:   SnapshotFileName,
	}
}
