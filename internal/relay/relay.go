// Package relay hands a finalized order summary to the WhatsApp channel.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"unicode"

	"github.com/rs/zerolog"
)

// Transport names, in fallback order
const (
	TransportWaMe   = "wa.me"
	TransportScheme = "scheme"
	TransportWeb    = "web"
)

var (
	ErrBlocked          = errors.New("transport blocked")
	ErrInvalidRecipient = errors.New("recipient has no digits")
)

// Links the three deep links for one message
type Links struct {
	WaMe   string `json:"wa_me"`
	Scheme string `json:"scheme"`
	Web    string `json:"web"`
}

// Link one transport attempt
type Link struct {
	Transport string `json:"transport"`
	URL       string `json:"url"`
}

// Ordered links in fallback order
func (l Links) Ordered() []Link {
	return []Link{
		{Transport: TransportWaMe, URL: l.WaMe},
		{Transport: TransportScheme, URL: l.Scheme},
		{Transport: TransportWeb, URL: l.Web},
	}
}

// Digits keeps only the digits of a phone number
func Digits(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// BuildLinks deep links for a destination number and message
func BuildLinks(phone, text string) (Links, error) {
	digits := Digits(phone)
	if digits == "" {
		return Links{}, ErrInvalidRecipient
	}
	encoded := url.QueryEscape(text)
	encoded = strings.ReplaceAll(encoded, "+", "%20")
	return Links{
		WaMe:   fmt.Sprintf("https://wa.me/%s?text=%s", digits, encoded),
		Scheme: fmt.Sprintf("whatsapp://send?phone=%s&text=%s", digits, encoded),
		Web:    fmt.Sprintf("https://web.whatsapp.com/send?phone=%s&text=%s", digits, encoded),
	}, nil
}

// TransportError every transport failed; Fallback is the direct navigation link
type TransportError struct {
	Fallback string
	Attempts map[string]error
}

func (e *TransportError) Error() string {
	names := make([]string, 0, len(e.Attempts))
	for _, l := range []string{TransportWaMe, TransportScheme, TransportWeb} {
		if err, ok := e.Attempts[l]; ok {
			names = append(names, l+": "+err.Error())
		}
	}
	return "all relay transports failed (" + strings.Join(names, "; ") + ")"
}

// Launcher opens one link
type Launcher interface {
	Launch(ctx context.Context, link Link) error
}

// Delivery successful relay
type Delivery struct {
	Transport string `json:"transport"`
	URL       string `json:"url"`
	Links     Links  `json:"links"`
}

// Relay tries each transport in order, never retrying one that failed
type Relay struct {
	launcher Launcher
	logger   *zerolog.Logger
}

// New creates a relay over a launcher
func New(launcher Launcher, logger *zerolog.Logger) *Relay {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Relay{launcher: launcher, logger: logger}
}

// Send relays text to phone. On total failure the error is a *TransportError
// and the returned links remain usable for direct navigation.
func (r *Relay) Send(ctx context.Context, phone, text string) (*Delivery, Links, error) {
	links, err := BuildLinks(phone, text)
	if err != nil {
		return nil, Links{}, err
	}

	attempts := make(map[string]error, 3)
	for _, link := range links.Ordered() {
		if err := ctx.Err(); err != nil {
			attempts[link.Transport] = err
			break
		}
		if err := r.launcher.Launch(ctx, link); err != nil {
			r.logger.Warn().Err(err).Str("transport", link.Transport).Msg("relay transport failed")
			attempts[link.Transport] = err
			continue
		}
		return &Delivery{Transport: link.Transport, URL: link.URL, Links: links}, links, nil
	}

	return nil, links, &TransportError{Fallback: links.WaMe, Attempts: attempts}
}

// ClientLauncher hands links to the shopper's client for opening.
// Blocked transports fail the way popup or scheme blocking does in a browser.
type ClientLauncher struct {
	mu      sync.RWMutex
	blocked map[string]bool
}

// NewClientLauncher launcher with the given transports blocked
func NewClientLauncher(blocked ...string) *ClientLauncher {
	l := &ClientLauncher{blocked: make(map[string]bool, len(blocked))}
	for _, t := range blocked {
		l.blocked[t] = true
	}
	return l
}

// Block toggles a transport
func (l *ClientLauncher) Block(transport string, blocked bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.blocked[transport] = blocked
}

func (l *ClientLauncher) Launch(_ context.Context, link Link) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.blocked[link.Transport] {
		return fmt.Errorf("%w: %s", ErrBlocked, link.Transport)
	}
	return nil
}
