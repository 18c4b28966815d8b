package document_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"go-recruiter-backend/pkg/document"
	"go-recruiter-backend/pkg/document/documenttest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapOpener map[string][]byte

func (m mapOpener) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	data, ok := m[ref]
	if !ok {
		return nil, errors.New("not found")
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

func TestExtractBytes(t *testing.T) {
	t.Run("PDF pages are joined in order", func(t *testing.T) {
		data := documenttest.PDF("Senior Go engineer", "", "Kubernetes and Postgres")

		text, err := document.ExtractBytes(data, document.KindPDF)
		require.NoError(t, err)

		first := strings.Index(text, "Senior Go engineer")
		second := strings.Index(text, "Kubernetes and Postgres")
		assert.GreaterOrEqual(t, first, 0)
		assert.Greater(t, second, first)
		assert.Equal(t, strings.TrimSpace(text), text)
	})

	t.Run("DOCX paragraphs are joined with newlines and blanks skipped", func(t *testing.T) {
		data := documenttest.DOCX("Jane Doe", "", "   ", "Backend developer, 6 years")

		text, err := document.ExtractBytes(data, document.KindDOCX)
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe\nBackend developer, 6 years", text)
	})

	t.Run("DOCX with only blank paragraphs is empty content", func(t *testing.T) {
		_, err := document.ExtractBytes(documenttest.DOCX("", "  "), document.KindDOCX)
		assert.ErrorIs(t, err, document.ErrEmptyContent)
	})

	t.Run("PDF without text is empty content", func(t *testing.T) {
		_, err := document.ExtractBytes(documenttest.PDF(""), document.KindPDF)
		assert.ErrorIs(t, err, document.ErrEmptyContent)
	})

	t.Run("truncated PDF is corrupt", func(t *testing.T) {
		_, err := document.ExtractBytes([]byte("%PDF-1.4\n1 0 obj\n<<"), document.KindPDF)
		assert.ErrorIs(t, err, document.ErrCorruptDocument)
	})

	t.Run("DOCX that is not a zip is corrupt", func(t *testing.T) {
		_, err := document.ExtractBytes([]byte("PK\x03\x04not really a zip"), document.KindDOCX)
		assert.ErrorIs(t, err, document.ErrCorruptDocument)
	})

	t.Run("unknown kind is unsupported", func(t *testing.T) {
		_, err := document.ExtractBytes([]byte("plain"), document.Kind("txt"))
		assert.ErrorIs(t, err, document.ErrUnsupportedFormat)
	})
}

func TestDetectKind(t *testing.T) {
	kind, err := document.DetectKind(documenttest.PDF("x"), "resume.PDF")
	require.NoError(t, err)
	assert.Equal(t, document.KindPDF, kind)

	kind, err = document.DetectKind(documenttest.DOCX("x"), "resume.docx")
	require.NoError(t, err)
	assert.Equal(t, document.KindDOCX, kind)

	_, err = document.DetectKind(documenttest.PDF("x"), "resume.docx")
	assert.ErrorIs(t, err, document.ErrUnsupportedFormat)

	_, err = document.DetectKind([]byte("just some text"), "resume.txt")
	assert.ErrorIs(t, err, document.ErrUnsupportedFormat)
}

func TestExtractorReadsFromStorage(t *testing.T) {
	files := mapOpener{
		"cv.docx": documenttest.DOCX("Go", "SQL"),
		"big.pdf": documenttest.PDF(strings.Repeat("a", 200)),
	}

	t.Run("detects kind when not given", func(t *testing.T) {
		ex := document.NewExtractor(files, 1<<20)
		text, err := ex.Extract(context.Background(), "cv.docx", "")
		require.NoError(t, err)
		assert.Equal(t, "Go\nSQL", text)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		ex := document.NewExtractor(files, 1<<20)
		_, err := ex.Extract(context.Background(), "nope.pdf", document.KindPDF)
		assert.Error(t, err)
	})

	t.Run("oversized file is rejected", func(t *testing.T) {
		ex := document.NewExtractor(files, 64)
		_, err := ex.Extract(context.Background(), "big.pdf", document.KindPDF)
		assert.ErrorIs(t, err, document.ErrTooLarge)
		assert.NotErrorIs(t, err, document.ErrCorruptDocument)
	})
}
