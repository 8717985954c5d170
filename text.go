package urlwasher

import (
	"context"
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sourcegraph/conc"
)

// TextWasher washes every URL found in free-form text.
type TextWasher struct {
	washer *Washer
}

// NewTextWasher creates a TextWasher backed by w.
func NewTextWasher(w *Washer) *TextWasher {
	return &TextWasher{washer: w}
}

// Wash returns text with each whitespace-delimited http(s) URL replaced by
// its washed form. Everything else, whitespace included, is kept exactly.
// URLs that fail to wash are logged and kept as they are.
//
// Every URL token is washed on its own goroutine, so very large inputs fan
// out without limit.
func (t *TextWasher) Wash(ctx context.Context, text string) string {
	tokens, separators := splitText(text)
	var wg conc.WaitGroup
	for i, token := range tokens {
		if !strings.HasPrefix(token, "http://") && !strings.HasPrefix(token, "https://") {
			continue
		}
		u, err := url.Parse(token)
		if err != nil {
			continue
		}
		wg.Go(func() {
			log.Debugf("Washing part of text: %v", token)
			washed, ok, err := t.washer.Wash(ctx, u)
			if err != nil {
				log.Errorf("Could not wash url '%v': %v", token, err)
				return
			}
			if ok {
				tokens[i] = washed.String()
			}
		})
	}
	wg.Wait()

	var b strings.Builder
	b.Grow(len(text))
	for i, token := range tokens {
		b.WriteString(token)
		if i < len(separators) {
			b.WriteRune(separators[i])
		}
	}
	return b.String()
}

// splitText splits text on every whitespace rune. Adjacent separators yield
// empty tokens, so len(tokens) == len(separators)+1.
func splitText(text string) (tokens []string, separators []rune) {
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			tokens = append(tokens, text[start:i])
			separators = append(separators, r)
			start = i + size
		}
		i += size
	}
	tokens = append(tokens, text[start:])
	return tokens, separators
}
