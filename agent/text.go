package agent

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

const wordsPerMinute = 200

// PlainText extracts the visible text of an HTML fragment. Plain captions
// pass through unchanged apart from whitespace normalisation.
func PlainText(content string) string {
	z := html.NewTokenizer(strings.NewReader(content))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func WordCount(content string) int {
	return len(strings.Fields(PlainText(content)))
}

// ReadingTime is ceil(words/200) minutes.
func ReadingTime(content string) int {
	return int(math.Ceil(float64(WordCount(content)) / wordsPerMinute))
}

const excerptRunes = 200

// DeriveExcerpt returns the first sentence-ish slice of the content text.
func DeriveExcerpt(content string) string {
	text := PlainText(content)
	rs := []rune(text)
	if len(rs) <= excerptRunes {
		return text
	}
	cut := rs[:excerptRunes]
	for i := len(cut) - 1; i > excerptRunes/2; i-- {
		if cut[i] == ' ' {
			cut = cut[:i]
			break
		}
	}
	return strings.TrimSpace(string(cut)) + "…"
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases title, collapses runs of non-alphanumerics into one
// hyphen and trims leading/trailing hyphens.
func Slugify(title string) string {
	s := nonSlugChars.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}
