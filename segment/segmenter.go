package segment

import (
	"regexp"
	"strings"

	"github.com/poiesic/simcheck/core"
)

// Default chunking bounds, chosen so a chunk roughly matches the span of text
// an embedding model scores well on.
const (
	DefaultMinWords     = 40
	DefaultMaxWords     = 60
	DefaultOverlapWords = 10
)

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	punctuationRe = regexp.MustCompile(`\s*([.,!?;:])\s*`)
)

// Segmenter splits normalized text into overlapping word-bounded chunks.
// The window advances by MaxWords-OverlapWords so adjacent chunks share
// OverlapWords words of cross-boundary context.
type Segmenter struct {
	MinWords     int
	MaxWords     int
	OverlapWords int
}

// New creates a Segmenter with the given bounds. Non-positive values fall
// back to the defaults; an overlap at or above MaxWords is clamped so the
// window always advances.
func New(minWords, maxWords, overlapWords int) *Segmenter {
	if minWords <= 0 {
		minWords = DefaultMinWords
	}
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	if maxWords < minWords {
		maxWords = minWords
	}
	if overlapWords < 0 {
		overlapWords = DefaultOverlapWords
	}
	if overlapWords >= maxWords {
		overlapWords = maxWords - 1
	}
	return &Segmenter{
		MinWords:     minWords,
		MaxWords:     maxWords,
		OverlapWords: overlapWords,
	}
}

// Normalize canonicalizes text before chunking: lowercase, collapsed
// whitespace, and punctuation followed by exactly one space.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = punctuationRe.ReplaceAllString(text, "$1 ")
	return strings.TrimSpace(text)
}

// CountWords returns the number of words in the normalized form of text.
// This is the word count used for submission validation, so a text accepted
// here is guaranteed to segment without a content-too-short error.
func CountWords(text string) int {
	return len(strings.Fields(Normalize(text)))
}

// Segment splits text into ordered overlapping chunks of the normalized input.
//
// The final partial window is merged into the previous chunk when it falls
// below MinWords, unless it is the only chunk. Returns ErrContentTooShort
// when the total word count is below MinWords; callers reject such input
// before any job is created.
//
// Invariant: concatenating each chunk's non-overlap core region, in order,
// reconstructs the normalized input exactly once.
func (s *Segmenter) Segment(text string) ([]core.Chunk, error) {
	normalized := Normalize(text)
	words := strings.Fields(normalized)

	if len(words) < s.MinWords {
		return nil, ErrContentTooShort
	}

	stride := s.MaxWords - s.OverlapWords

	var chunks []core.Chunk
	for start := 0; start < len(words); start += stride {
		end := start + s.MaxWords
		if end > len(words) {
			end = len(words)
		}

		if end-start < s.MinWords && len(chunks) > 0 {
			// Final partial window: extend the previous chunk to the end of
			// the text instead of emitting an undersized chunk.
			prev := &chunks[len(chunks)-1]
			prev.Text = strings.Join(words[prev.StartWord:len(words)], " ")
			prev.WordCount = len(words) - prev.StartWord
			break
		}

		chunks = append(chunks, core.Chunk{
			Index:     len(chunks),
			Text:      strings.Join(words[start:end], " "),
			StartWord: start,
			WordCount: end - start,
		})

		if end >= len(words) {
			break
		}
	}

	return chunks, nil
}
