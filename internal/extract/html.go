package extract

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

// HTML returns the visible body text of an HTML document.
func HTML(data []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	// Remove noise to save LLM tokens
	doc.Find("script, style, noscript, nav, footer, header, iframe, form, .ads, #ads").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	// Keep block boundaries as line breaks so headings and list items stay apart.
	doc.Find("p, li, h1, h2, h3, h4, h5, h6, tr, br, div").Each(func(i int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	body := doc.Find("body")
	if body.Length() == 0 {
		return doc.Text(), nil
	}
	return body.Text(), nil
}
