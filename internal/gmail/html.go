package gmail

import (
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// htmlToText renders an HTML body as markdown so the analysis sees readable
// text instead of markup. If conversion fails the raw HTML is returned; a
// noisy body still beats no body.
func htmlToText(html string) string {
	md, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return html
	}
	return strings.TrimSpace(md)
}
