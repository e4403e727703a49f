package service

import (
	"regexp"
	"strings"

	"github.com/tessera-ai/tessera/internal/domain"
)

var paragraphSplitter = regexp.MustCompile(`\n[ \t]*\n`)

// SplitChunks splits extracted document text into segments of at most
// maxSize characters, preserving paragraph and sentence structure where
// possible. Paragraphs under the limit pass through whole; oversized
// paragraphs are split on sentence boundaries and sentences are greedily
// packed; a single sentence longer than maxSize is hard-split by character
// count so the size bound holds unconditionally. Empty and whitespace-only
// segments are dropped. The function is pure: identical input always yields
// an identical chunk sequence.
func SplitChunks(text string, maxSize int) ([]string, error) {
	if maxSize <= 0 {
		return nil, domain.ErrInvalidChunkSize
	}

	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil, nil
	}
	if len([]rune(clean)) <= maxSize {
		return []string{clean}, nil
	}

	var chunks []string
	for _, paragraph := range paragraphSplitter.Split(clean, -1) {
		paragraph = strings.TrimSpace(paragraph)
		if paragraph == "" {
			continue
		}
		if len([]rune(paragraph)) <= maxSize {
			chunks = append(chunks, paragraph)
			continue
		}
		chunks = append(chunks, splitParagraph(paragraph, maxSize)...)
	}

	return chunks, nil
}

// splitParagraph packs sentences into chunks of at most maxSize characters.
func splitParagraph(paragraph string, maxSize int) []string {
	var chunks []string
	var buffer []string
	bufferLen := 0

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		chunk := strings.TrimSpace(strings.Join(buffer, " "))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		buffer = buffer[:0]
		bufferLen = 0
	}

	for _, sentence := range strings.SplitAfter(paragraph, ".") {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}

		sentenceLen := len([]rune(sentence))
		if sentenceLen > maxSize {
			flush()
			chunks = append(chunks, hardSplit(sentence, maxSize)...)
			continue
		}

		// +1 accounts for the joining space.
		joined := bufferLen + sentenceLen
		if len(buffer) > 0 {
			joined++
		}
		if joined > maxSize {
			flush()
			joined = sentenceLen
		}

		buffer = append(buffer, sentence)
		bufferLen = joined
	}
	flush()

	return chunks
}

// hardSplit cuts a single oversized sentence into maxSize-character pieces.
func hardSplit(sentence string, maxSize int) []string {
	runes := []rune(sentence)
	var pieces []string
	for start := 0; start < len(runes); start += maxSize {
		end := start + maxSize
		if end > len(runes) {
			end = len(runes)
		}
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			pieces = append(pieces, piece)
		}
	}
	return pieces
}
