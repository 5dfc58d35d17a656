// Package htmlutil extracts readable text and tables from HTML documents
// using goquery.
package htmlutil

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Parse builds a goquery document from raw HTML bytes.
func Parse(body []byte) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(bytes.NewReader(body))
}

var (
	reSpaces     = regexp.MustCompile(`[ \t]+`)
	reBlankLines = regexp.MustCompile(`\n{3,}`)
)

// ExtractText returns the readable text of a document: scripts, styles,
// navigation, headers, footers, and forms are dropped, and whitespace is
// collapsed.
func ExtractText(doc *goquery.Document) string {
	doc.Find("script, style, nav, header, footer, form, noscript").Remove()

	text := doc.Find("body").Text()
	if strings.TrimSpace(text) == "" {
		text = doc.Text()
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(reSpaces.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	out := strings.Join(lines, "\n")
	return strings.TrimSpace(reBlankLines.ReplaceAllString(out, "\n\n"))
}

// Tables renders every <table> in the document as pipe-separated rows, one
// string per table. Single-row tables are skipped; they are usually layout
// artifacts.
func Tables(doc *goquery.Document) []string {
	var tables []string
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var rows []string
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			var cells []string
			row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, strings.TrimSpace(cell.Text()))
			})
			if len(cells) > 0 {
				rows = append(rows, strings.Join(cells, " | "))
			}
		})
		if len(rows) > 1 {
			tables = append(tables, strings.Join(rows, "\n"))
		}
	})
	return tables
}

// TextOf returns the trimmed text of the first element matching selector.
func TextOf(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}
