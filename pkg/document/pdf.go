package document

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

func pdfBlocks(data []byte) (blocks []string, err error) {
	// the parser panics on some malformed object graphs
	defer func() {
		if r := recover(); r != nil {
			blocks = nil
			err = fmt.Errorf("%w: %v", ErrCorruptDocument, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			// encrypted without a usable password: nothing we can read
			return nil, ErrEmptyContent
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	pages := r.NumPage()
	blocks = make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", ErrCorruptDocument, i, err)
		}
		blocks = append(blocks, text)
	}
	return blocks, nil
}
