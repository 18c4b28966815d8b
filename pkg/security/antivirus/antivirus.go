// Package antivirus scans uploads with a clamd daemon before they are stored.
package antivirus

import (
	"context"
	"errors"
)

// ErrInfected is returned by Check when the scanner found a signature.
var ErrInfected = errors.New("antivirus: malware detected")

type Result struct {
	Infected bool
	Threat   string
}

// Scanner reports whether data carries a known threat. An error means the
// data could not be scanned and must not be trusted.
type Scanner interface {
	Scan(ctx context.Context, data []byte) (Result, error)
}

// Check scans data and folds an infected result into ErrInfected.
func Check(ctx context.Context, s Scanner, data []byte) (Result, error) {
	res, err := s.Scan(ctx, data)
	if err != nil {
		return res, err
	}
	if res.Infected {
		return res, ErrInfected
	}
	return res, nil
}
