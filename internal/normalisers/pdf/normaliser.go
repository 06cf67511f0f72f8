package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/ragkit/internal/core/domain"
	"github.com/custodia-labs/ragkit/internal/core/ports/driven"
	"github.com/custodia-labs/ragkit/internal/normalisers/textnorm"
)

// Ensure Normaliser implements the interface.
var _ driven.PDFExtractor = (*Normaliser)(nil)

// MIMEType is the only content type accepted for uploads.
const MIMEType = "application/pdf"

var magic = []byte("%PDF-")

// Normaliser handles PDF documents.
type Normaliser struct {
	now func() time.Time
}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{now: time.Now}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Extract parses data as a PDF and returns its normalised text.
// The source tag is the filename, or upload-<unix ms> when none was given.
func (n *Normaliser) Extract(ctx context.Context, filename string, data []byte) (*domain.Extraction, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrExtraction)
	}
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), magic) {
		return nil, fmt.Errorf("%w: not a PDF file", domain.ErrExtraction)
	}

	raw, err := readText(ctx, data)
	if err != nil {
		return nil, err
	}

	source := strings.TrimSpace(filename)
	if source == "" {
		source = fmt.Sprintf("upload-%d", n.now().UnixMilli())
	}

	return &domain.Extraction{
		Text:   textnorm.Normalise(textnorm.PercentDecode(raw)),
		Source: source,
	}, nil
}

// readText concatenates the plain text of every page.
func readText(ctx context.Context, data []byte) (text string, err error) {
	// The parser panics on some corrupt inputs.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: malformed PDF: %v", domain.ErrExtraction, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %v", domain.ErrExtraction, i, err)
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	return b.String(), nil
}
