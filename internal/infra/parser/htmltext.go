package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	htmlMarker = regexp.MustCompile(`(?i)<(html|body|p|div|br|span|table|h[1-6]|article|section)[\s/>]`)
	spaceRun   = regexp.MustCompile(`[ \t\f\v]+`)
	blankRun   = regexp.MustCompile(`\n{3,}`)
)

// HTMLText turns scraped HTML documents into plain text before analysis.
// Content without recognizable markup is returned unchanged.
type HTMLText struct{}

func NewHTMLText() *HTMLText { return &HTMLText{} }

func (h *HTMLText) Normalize(content string) string {
	if !htmlMarker.MatchString(content) {
		return content
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}
	doc.Find("script, style, noscript, head").Remove()
	// block elements jadi baris baru supaya kalimat tidak nyambung
	doc.Find("p, div, br, li, tr, h1, h2, h3, h4, h5, h6, article, section").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(spaceRun.ReplaceAllString(l, " "))
	}
	text := strings.Join(lines, "\n")
	text = blankRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
