package ingest

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"askhr/internal/domain"
)

// Extract returns the plain text of an upload. PDFs are read page by page;
// anything else is decoded as text. A failure yields whatever text was
// recovered together with an error wrapping domain.ErrExtraction.
func Extract(u domain.Upload, logger zerolog.Logger) (string, error) {
	if strings.EqualFold(filepath.Ext(u.Name), ".pdf") {
		return extractPDF(u.Data, logger.With().Str("file", u.Name).Logger())
	}
	return decodeText(u.Data), nil
}

func extractPDF(data []byte, logger zerolog.Logger) (text string, err error) {
	defer func() {
		// the pdf reader panics on some malformed inputs
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: pdf reader: %v", domain.ErrExtraction, r)
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", domain.ErrExtraction, err)
	}
	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		b.WriteString(pageText(r, i, logger))
		b.WriteString("\n")
	}
	return b.String(), nil
}

func pageText(r *pdf.Reader, num int, logger zerolog.Logger) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Warn().Int("page", num).Interface("panic", rec).Msg("page extraction failed")
			text = ""
		}
	}()
	p := r.Page(num)
	if p.V.IsNull() {
		return ""
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		logger.Warn().Err(err).Int("page", num).Msg("page extraction failed")
		return ""
	}
	return text
}

// decodeText honours a UTF-8 or UTF-16 byte order mark, keeps valid UTF-8
// as is and reads anything else as Windows-1252.
func decodeText(data []byte) string {
	if utf8.Valid(data) && !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		return string(data)
	}
	if out, _, err := transform.Bytes(unicode.BOMOverride(transform.Nop), data); err == nil && utf8.Valid(out) {
		return string(out)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "")
	}
	return string(out)
}
