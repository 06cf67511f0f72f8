package html

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/ragkit/internal/adapters/driven/upstream"
	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/normalisers/textnorm"
)

// Ensure Normaliser implements the interface.
var _ driven.URLExtractor = (*Normaliser)(nil)

// DefaultUserAgent is sent with every fetch; some sites reject bare clients.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

const provider = "web"

// Config holds configuration for the web normaliser.
type Config struct {
	// Timeout bounds the whole fetch (default: 30s).
	Timeout time.Duration

	// UserAgent overrides DefaultUserAgent.
	UserAgent string

	// Client replaces the default HTTP client, mainly for tests.
	Client *http.Client
}

// Normaliser handles HTML documents fetched by URL.
type Normaliser struct {
	client    *http.Client
	userAgent string
}

// New creates a new web normaliser.
func New(cfg Config) *Normaliser {
	client := cfg.Client
	if client == nil {
		client = upstream.NewClient(cfg.Timeout)
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	return &Normaliser{client: client, userAgent: ua}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Extract fetches rawURL and returns the page's normalised text.
// The source tag is the URL as given.
func (n *Normaliser) Extract(ctx context.Context, rawURL string) (*domain.Extraction, error) {
	target, err := validateURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, upstream.TransportError(provider, domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	body, err := upstream.ReadBody(resp.Body)
	if err != nil {
		return nil, upstream.TransportError(provider, domain.ErrFetch, err)
	}

	if !upstream.IsSuccess(resp.StatusCode) {
		return nil, upstream.StatusError(provider, domain.ErrFetch, resp.StatusCode, body)
	}

	if !n.isHTML(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedContent, resp.Header.Get("Content-Type"))
	}

	text, err := stripHTML(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}

	return &domain.Extraction{
		Text:   textnorm.Normalise(text),
		Source: rawURL,
	}, nil
}

func (n *Normaliser) isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, t := range n.SupportedMIMETypes() {
		if mediaType == t {
			return true
		}
	}
	return false
}

// validateURL accepts absolute http and https URLs only.
func validateURL(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: invalid url: %v", domain.ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: url scheme must be http or https", domain.ErrInvalidInput)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: url has no host", domain.ErrInvalidInput)
	}
	return u.String(), nil
}

// skipped elements contribute no text.
var skipped = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Iframe:   true,
	atom.Nav:      true,
	atom.Header:   true,
	atom.Footer:   true,
}

// block elements are separated from their neighbours by a line break.
var block = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Td: true, atom.Th: true,
	atom.Blockquote: true, atom.Pre: true, atom.Table: true,
	atom.Section: true, atom.Article: true, atom.Main: true,
}

// stripHTML parses the document and returns the text of its body.
func stripHTML(body []byte) (string, error) {
	doc, err := xhtml.Parse(bytes.NewReader(body))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(*xhtml.Node)
	walk = func(node *xhtml.Node) {
		switch node.Type {
		case xhtml.CommentNode:
			return
		case xhtml.TextNode:
			b.WriteString(node.Data)
			return
		case xhtml.ElementNode:
			if skipped[node.DataAtom] {
				return
			}
		}

		isBlock := node.Type == xhtml.ElementNode && block[node.DataAtom]
		if isBlock {
			b.WriteString("\n")
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if isBlock {
			b.WriteString("\n")
		}
	}
	walk(doc)

	return b.String(), nil
}
