// Package metrics derives content statistics: word counts, two-sided
// read-time estimates, printed page counts, and authoring-time
// estimates. Per-page results are memoized on the loaded instance for
// the duration of one request and never persisted.
package metrics

import (
	"context"
	"fmt"
	"math"
	"regexp"

	"go-writer-app/internal/data"
	"go-writer-app/internal/tree"
)

// Reading and writing rate constants.
const (
	fastWPM      = 200 // fast reader, words per minute
	slowWPM      = 150 // slow reader, words per minute
	wordsPerPage = 275 // printed page estimate
	writeWPH     = 350 // authoring rate, words per hour
)

// A word is a maximal run of letters, optionally extended by a single
// apostrophe or hyphen followed by more letters, so "Mother's" and
// "one-time" each count once.
var wordPattern = regexp.MustCompile(`[a-zA-Z']+-?[a-zA-Z']*`)

// WordCount counts the words in text.
func WordCount(text string) int {
	return len(wordPattern.FindAllString(text, -1))
}

// PageWordCount counts the words in a page's body, memoized on the
// instance.
func PageWordCount(page *data.Page) int {
	if page.Memo.Words != nil {
		return *page.Memo.Words
	}
	words := WordCount(page.Body)
	page.Memo.Words = &words
	return words
}

// ReadTime renders a two-sided reading estimate for the given word
// count, e.g. "1 - 2 mins.". Past the 120-minute mark at the fast rate
// it switches to hours.
func ReadTime(words int) string {
	fast := float64(words) / fastWPM
	slow := float64(words) / slowWPM
	if fast < 120 {
		return fmt.Sprintf("%d - %d mins.", round(fast), round(slow))
	}
	return fmt.Sprintf("%d - %d hrs.", round(fast/60), round(slow/60))
}

// WriteTime renders a single-point authoring estimate for the given
// word count: minutes under two hours, hours up to two days, days
// beyond that.
func WriteTime(words int) string {
	hours := float64(words) / writeWPH
	switch {
	case hours < 2:
		return fmt.Sprintf("%d mins.", round(hours*60))
	case hours <= 48:
		return fmt.Sprintf("%d hrs.", round(hours))
	default:
		return fmt.Sprintf("%d days", round(hours/24))
	}
}

// Engine aggregates per-page metrics over a page's children via the
// tree navigator.
type Engine struct {
	nav *tree.Navigator
}

// NewEngine creates an Engine using the given navigator.
func NewEngine(nav *tree.Navigator) *Engine {
	return &Engine{nav: nav}
}

// ReadTime renders the reading estimate for a single page's own body.
func (e *Engine) ReadTime(page *data.Page) string {
	return ReadTime(PageWordCount(page))
}

// ChildWordCount sums the word counts of page's chapter and post
// children, memoized on the instance.
func (e *Engine) ChildWordCount(ctx context.Context, page *data.Page, publishedOnly bool) (int, error) {
	// Only the published aggregate is memoized; it is the one the render
	// path asks for repeatedly.
	if publishedOnly && page.Memo.ChildWords != nil {
		return *page.Memo.ChildWords, nil
	}
	children, err := e.nav.PubChildren(ctx, page, publishedOnly, true)
	if err != nil {
		return 0, err
	}
	words := 0
	for _, child := range children {
		words += PageWordCount(child)
	}
	if publishedOnly {
		page.Memo.ChildWords = &words
	}
	return words, nil
}

// ChildReadTime renders the reading estimate for the aggregate of
// page's chapter and post children.
func (e *Engine) ChildReadTime(ctx context.Context, page *data.Page, publishedOnly bool) (string, error) {
	words, err := e.ChildWordCount(ctx, page, publishedOnly)
	if err != nil {
		return "", err
	}
	return ReadTime(words), nil
}

// PageCount estimates printed pages at 275 words per page. Container
// templates (blog, story) use the aggregate published child count;
// everything else uses the page's own body.
func (e *Engine) PageCount(ctx context.Context, page *data.Page) (int, error) {
	words := PageWordCount(page)
	if page.IsContainer() {
		var err error
		words, err = e.ChildWordCount(ctx, page, true)
		if err != nil {
			return 0, err
		}
	}
	return round(float64(words) / wordsPerPage), nil
}

// ChildWriteTime estimates the authoring time of page's children,
// published or not, as a single rounded figure.
func (e *Engine) ChildWriteTime(ctx context.Context, page *data.Page) (string, error) {
	words, err := e.ChildWordCount(ctx, page, false)
	if err != nil {
		return "", err
	}
	return WriteTime(words), nil
}

func round(f float64) int {
	return int(math.Round(f))
}
