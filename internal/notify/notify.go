// Package notify posts run outcomes to a Discord channel.
package notify

import (
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Notifier announces finished runs over the Discord REST API. It never
// opens a gateway connection; sending a channel message only needs the
// bot token.
type Notifier struct {
	session   *discordgo.Session
	channelID string
}

func New(token, channelID string) (*Notifier, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating Discord session: %w", err)
	}
	return &Notifier{session: s, channelID: channelID}, nil
}

// Outcome is what gets announced about one finished run.
type Outcome struct {
	Service    string
	Completed  bool
	Iterations int
	Summary    string
	PRURL      string
}

// Announce posts the outcome to the configured channel. Delivery
// problems are logged and swallowed; a run never fails because its
// announcement did.
func (n *Notifier) Announce(o Outcome) {
	if _, err := n.session.ChannelMessageSend(n.channelID, FormatOutcome(o)); err != nil {
		log.Printf("notify: sending Discord message: %v", err)
	}
}

// FormatOutcome renders the one-line announcement.
func FormatOutcome(o Outcome) string {
	switch {
	case o.PRURL != "":
		return fmt.Sprintf("Investigation of %s finished in %d iteration(s): opened %s", o.Service, o.Iterations, o.PRURL)
	case o.Completed:
		return fmt.Sprintf("Investigation of %s finished in %d iteration(s): %s", o.Service, o.Iterations, firstLine(o.Summary))
	default:
		return fmt.Sprintf("Investigation of %s stopped after %d iteration(s) without completing.", o.Service, o.Iterations)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
