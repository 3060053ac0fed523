package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"

	"github.com/ludo-technologies/simscan/domain"
)

// DocumentReaderImpl implements the TextExtractor interface. PDF and HTML
// submissions are reduced to their text; everything else is read verbatim.
type DocumentReaderImpl struct {
	files domain.SubmissionFileReader
}

// NewDocumentReader creates a text extractor reading through files
func NewDocumentReader(files domain.SubmissionFileReader) *DocumentReaderImpl {
	if files == nil {
		files = NewFileReader()
	}
	return &DocumentReaderImpl{files: files}
}

// ExtractText returns the plain text of the submission at path
func (r *DocumentReaderImpl) ExtractText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extractPDF(path)
	case ".html", ".htm":
		content, err := r.files.ReadFile(path)
		if err != nil {
			return "", err
		}
		return extractHTML(string(content)), nil
	default:
		content, err := r.files.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(content), nil
	}
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", domain.NewInvalidInputError(fmt.Sprintf("open pdf %s", path), err)
	}
	defer f.Close()

	var b strings.Builder
	total := r.NumPage()
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, pageErr := p.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return "", domain.NewInvalidInputError(fmt.Sprintf("no extractable text found in pdf %s", path), nil)
	}
	return b.String(), nil
}

// extractHTML keeps text tokens outside <script> and <style>, one space apart
func extractHTML(content string) string {
	var b strings.Builder
	skip := 0

	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			if name, _ := z.TagName(); isRawTextTag(name) {
				skip++
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); isRawTextTag(name) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip > 0 {
				continue
			}
			text := strings.TrimSpace(string(z.Text()))
			if text == "" {
				continue
			}
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(text)
		}
	}
}

func isRawTextTag(name []byte) bool {
	tag := string(name)
	return tag == "script" || tag == "style"
}
