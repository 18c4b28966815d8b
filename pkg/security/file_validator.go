package security

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrExtension       = errors.New("file extension not allowed")
	ErrContentMismatch = errors.New("file content does not match extension")
	ErrMIMENotAllowed  = errors.New("file type not allowed")
)

// FileValidationResult contains the result of file validation
type FileValidationResult struct {
	Extension    string // lowercase, with dot
	DetectedMIME string
}

// Magic byte signatures for résumé uploads
var magicBytes = map[string][]byte{
	".pdf":  {0x25, 0x50, 0x44, 0x46}, // %PDF
	".docx": {0x50, 0x4B, 0x03, 0x04}, // ZIP (PK..)
}

// Strict MIME types - application/octet-stream is never accepted
var strictMIMETypes = map[string]string{
	"application/pdf": ".pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	// some DOCX writers order the zip entries so only the container is recognised
	"application/zip": ".docx",
}

// ValidateFile performs the upload checks in order:
// size, extension whitelist, magic bytes, sniffed MIME type.
func ValidateFile(filename string, data []byte, maxSize int64) (*FileValidationResult, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w (%d bytes)", ErrFileTooLarge, maxSize)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	signature, ok := magicBytes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrExtension, ext)
	}

	if !bytes.HasPrefix(data, signature) {
		return nil, ErrContentMismatch
	}

	detected := mimetype.Detect(data)
	mime := baseMIME(detected.String())
	expectedExt, allowed := strictMIMETypes[mime]
	if !allowed {
		return nil, fmt.Errorf("%w: %s", ErrMIMENotAllowed, mime)
	}
	if expectedExt != ext {
		return nil, ErrContentMismatch
	}

	return &FileValidationResult{Extension: ext, DetectedMIME: mime}, nil
}

// GetAllowedExtensions returns a list of allowed extensions for error messages
func GetAllowedExtensions() []string {
	return []string{".pdf", ".docx"}
}

func baseMIME(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.TrimSpace(m)
}
