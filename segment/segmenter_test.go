package segment

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// synthetic word sequence "w0 w1 w2 ..." so chunk boundaries are easy to verify
func makeText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestNormalize(t *testing.T) {
	t.Run("lowercases and collapses whitespace", func(t *testing.T) {
		got := Normalize("Hello   World\n\tAgain")
		assert.Equal(t, "hello world again", got)
	})

	t.Run("normalizes punctuation spacing", func(t *testing.T) {
		got := Normalize("one ,two .  three!")
		assert.Equal(t, "one, two. three!", got)
	})

	t.Run("trims edges", func(t *testing.T) {
		got := Normalize("  padded  ")
		assert.Equal(t, "padded", got)
	})
}

func TestSegmentTooShort(t *testing.T) {
	s := New(40, 60, 10)
	_, err := s.Segment(makeText(39))
	assert.ErrorIs(t, err, ErrContentTooShort)
}

func TestSegmentSingleChunk(t *testing.T) {
	s := New(40, 60, 10)
	chunks, err := s.Segment(makeText(55))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 55, chunks[0].WordCount)
}

func TestSegmentWindowAdvance(t *testing.T) {
	s := New(40, 60, 10)
	chunks, err := s.Segment(makeText(200))
	require.NoError(t, err)

	// stride is 50: windows start at 0, 50, 100, 150
	require.Len(t, chunks, 4)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.Equal(t, i*50, c.StartWord)
	}
	assert.Equal(t, 60, chunks[0].WordCount)
	// final window covers 150..200
	assert.Equal(t, 50, chunks[3].WordCount)
}

func TestSegmentMergesShortTail(t *testing.T) {
	// 170 words: windows 0-60, 50-110, 100-160, then a 20-word tail at 150
	// which is below MinWords and must be absorbed by the previous chunk.
	s := New(40, 60, 10)
	chunks, err := s.Segment(makeText(170))
	require.NoError(t, err)

	require.Len(t, chunks, 3)
	last := chunks[len(chunks)-1]
	assert.Equal(t, 100, last.StartWord)
	assert.Equal(t, 70, last.WordCount)
	assert.True(t, strings.HasSuffix(last.Text, "w169"))
}

func TestSegmentChunkCountFormula(t *testing.T) {
	s := New(40, 60, 10)
	stride := s.MaxWords - s.OverlapWords

	for _, n := range []int{40, 60, 61, 100, 150, 170, 200, 500, 1500} {
		chunks, err := s.Segment(makeText(n))
		require.NoError(t, err, "n=%d", n)

		expected := (n - s.OverlapWords + stride - 1) / stride // ceil((n-overlap)/stride)
		if expected < 1 {
			expected = 1
		}
		assert.InDelta(t, expected, len(chunks), 1, "n=%d", n)
	}
}

func TestSegmentCoreReconstruction(t *testing.T) {
	s := New(40, 60, 10)

	for _, n := range []int{40, 77, 150, 170, 443, 1500} {
		text := makeText(n)
		normalized := Normalize(text)
		chunks, err := s.Segment(text)
		require.NoError(t, err, "n=%d", n)

		// Non-overlap core: the full first chunk, then everything past the
		// shared overlap region for each subsequent chunk.
		var cores []string
		for i, c := range chunks {
			words := strings.Fields(c.Text)
			if i == 0 {
				cores = append(cores, words...)
			} else {
				cores = append(cores, words[s.OverlapWords:]...)
			}
		}
		assert.Equal(t, normalized, strings.Join(cores, " "), "n=%d", n)
	}
}

func TestSegmentOverlapSharedWithPrevious(t *testing.T) {
	s := New(40, 60, 10)
	chunks, err := s.Segment(makeText(200))
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Text)
		cur := strings.Fields(chunks[i].Text)
		assert.Equal(t, prev[len(prev)-s.OverlapWords:], cur[:s.OverlapWords])
	}
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 3, CountWords("One  Two\nThree"))
	assert.Equal(t, 0, CountWords("   "))
}

func TestNewClampsBounds(t *testing.T) {
	s := New(0, 0, -1)
	assert.Equal(t, DefaultMinWords, s.MinWords)
	assert.Equal(t, DefaultMaxWords, s.MaxWords)
	assert.Equal(t, DefaultOverlapWords, s.OverlapWords)

	s = New(40, 40, 50)
	assert.Equal(t, 39, s.OverlapWords)
}
