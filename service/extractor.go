package service

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/tieubaoca/docqa-be/types"
)

const wordprocessingNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// TextExtractor turns a supported file into plain text.
type TextExtractor interface {
	Extract(path string) (string, error)
}

// FileExtractor dispatches on the extension after the last '.' of the file
// name, compared case-insensitively. A name without '.' has no extension.
type FileExtractor struct{}

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

func (e *FileExtractor) Extract(path string) (string, error) {
	var ext string
	if name := filepath.Base(path); strings.Contains(name, ".") {
		ext = strings.ToLower(name[strings.LastIndex(name, ".")+1:])
	}

	switch ext {
	case "pdf":
		return extractPDF(path)
	case "docx":
		return extractDOCX(path)
	case "txt":
		return extractTXT(path)
	default:
		return "", &types.UnsupportedFormatError{Ext: ext}
	}
}

// extractPDF concatenates the text of every page, each followed by a newline.
func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: pdf: %w", types.ErrExtraction, err)
	}
	defer f.Close()

	var b strings.Builder
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if !page.V.IsNull() {
			text, err := page.GetPlainText(nil)
			if err != nil {
				return "", fmt.Errorf("%w: pdf page %d: %w", types.ErrExtraction, pageNum, err)
			}
			b.WriteString(text)
		}
		b.WriteString("\n")
	}
	return b.String(), nil
}

// extractDOCX joins the body paragraphs of word/document.xml with newlines.
// Paragraphs nested in tables are not part of the body paragraph list.
func extractDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: docx: %w", types.ErrExtraction, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: docx: %w", types.ErrExtraction, err)
		}
		defer rc.Close()

		paragraphs, err := parseDocumentXML(rc)
		if err != nil {
			return "", fmt.Errorf("%w: docx: %w", types.ErrExtraction, err)
		}
		return strings.Join(paragraphs, "\n"), nil
	}
	return "", fmt.Errorf("%w: docx: word/document.xml not found", types.ErrExtraction)
}

func parseDocumentXML(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		stack      []string
		current    strings.Builder
		inBodyPara bool
		inText     bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordprocessingNS {
				stack = append(stack, "")
				continue
			}
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			switch t.Name.Local {
			case "p":
				if parent == "body" {
					inBodyPara = true
					current.Reset()
				}
			case "t":
				inText = inBodyPara
			case "tab":
				if inBodyPara {
					current.WriteString("\t")
				}
			case "br", "cr":
				if inBodyPara {
					current.WriteString("\n")
				}
			}
			stack = append(stack, t.Name.Local)
		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			name := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			parent := ""
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			switch {
			case name == "t":
				inText = false
			case name == "p" && parent == "body" && inBodyPara:
				paragraphs = append(paragraphs, current.String())
				inBodyPara = false
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	return paragraphs, nil
}

func extractTXT(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: txt: %w", types.ErrExtraction, err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: txt: file is not valid UTF-8", types.ErrExtraction)
	}
	return string(data), nil
}
