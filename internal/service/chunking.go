package service

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultChunkMaxChars is the chunk size used when none is configured.
const DefaultChunkMaxChars = 2000

// sentencePattern matches a run of non-terminal characters closed by one or
// more of '.', '!' or '?'. Text after the last terminator is not a sentence.
var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// splitSentences returns the sentence units of text in order, untrimmed.
func splitSentences(text string) []string {
	return sentencePattern.FindAllString(text, -1)
}

// ChunkText greedily packs consecutive sentences into chunks of at most
// maxChars characters. A sentence longer than maxChars becomes its own
// oversized chunk. Text without terminal punctuation yields no chunks.
func ChunkText(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultChunkMaxChars
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	chunks := make([]string, 0, 4)
	var current strings.Builder
	currentLen := 0

	flush := func() {
		chunk := strings.TrimSpace(current.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		current.Reset()
		currentLen = 0
	}

	for _, sentence := range sentences {
		n := utf8.RuneCountInString(sentence)
		if currentLen > 0 && currentLen+n > maxChars {
			flush()
		}
		current.WriteString(sentence)
		currentLen += n
	}
	flush()

	return chunks
}
