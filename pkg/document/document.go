// Package document turns uploaded résumés into plain text.
package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
)

var (
	ErrUnsupportedFormat = errors.New("document: unsupported format")
	ErrCorruptDocument   = errors.New("document: corrupt or unreadable")
	ErrEmptyContent      = errors.New("document: no extractable text")
	ErrTooLarge          = errors.New("document: exceeds size limit")
)

const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DetectKind sniffs data and cross-checks it against the filename extension.
func DetectKind(data []byte, filename string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	mime := mimetype.Detect(data)

	switch {
	case mime.Is("application/pdf") && (ext == ".pdf" || ext == ""):
		return KindPDF, nil
	case (mime.Is(docxMIME) || mime.Is("application/zip")) && (ext == ".docx" || ext == ""):
		return KindDOCX, nil
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, mime.String(), ext)
}

// Opener is the read side of file storage.
type Opener interface {
	Open(ctx context.Context, ref string) (io.ReadCloser, error)
}

type Extractor struct {
	files   Opener
	maxSize int64
}

func NewExtractor(files Opener, maxSize int64) *Extractor {
	return &Extractor{files: files, maxSize: maxSize}
}

// Extract reads a stored document and returns its text.
func (e *Extractor) Extract(ctx context.Context, ref string, kind Kind) (string, error) {
	rc, err := e.files.Open(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("document: open %s: %w", ref, err)
	}
	defer rc.Close()

	r := io.Reader(rc)
	if e.maxSize > 0 {
		r = io.LimitReader(rc, e.maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("document: read %s: %w", ref, err)
	}
	if e.maxSize > 0 && int64(len(data)) > e.maxSize {
		return "", fmt.Errorf("%w: larger than %d bytes", ErrTooLarge, e.maxSize)
	}

	if kind == "" {
		if kind, err = DetectKind(data, ref); err != nil {
			return "", err
		}
	}
	return ExtractBytes(data, kind)
}

// ExtractBytes parses data as kind. Blocks of text (PDF pages, DOCX
// paragraphs) are joined with "\n"; blank blocks are dropped.
func ExtractBytes(data []byte, kind Kind) (string, error) {
	var (
		blocks []string
		err    error
	)
	switch kind {
	case KindPDF:
		blocks, err = pdfBlocks(data)
	case KindDOCX:
		blocks, err = docxBlocks(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, kind)
	}
	if err != nil {
		return "", err
	}

	text := joinBlocks(blocks)
	if text == "" {
		return "", ErrEmptyContent
	}
	return text, nil
}

func joinBlocks(blocks []string) string {
	kept := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if strings.TrimSpace(b) == "" {
			continue
		}
		kept = append(kept, b)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
