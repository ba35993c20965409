// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"strings"
	"unicode/utf8"
)

// Default chunking geometry for uploaded full text.
const (
	DefaultChunkSize    = 1200
	DefaultChunkOverlap = 200
)

// splitSeparators is tried in order: paragraph breaks first, then lines,
// then sentences, then words, then a hard rune-boundary cut.
var splitSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// SplitText splits text into chunks of at most size bytes with the given
// overlap between adjacent chunks. Splits prefer paragraph and line
// boundaries and fall back to sentence, word and rune cuts for long runs.
func SplitText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = DefaultChunkOverlap
		if overlap >= size {
			overlap = size / 4
		}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}

	pieces := splitRecursive(text, size, splitSeparators)
	return mergePieces(pieces, size, overlap)
}

// splitRecursive cuts text into pieces no longer than size, trying each
// separator in turn before hard-cutting. Separators stay attached to the
// piece they follow so rejoined chunks keep the original punctuation and
// paragraph breaks.
func splitRecursive(text string, size int, separators []string) []string {
	if len(text) <= size {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	sep := separators[0]
	rest := separators[1:]

	if sep == "" {
		return hardCut(text, size)
	}

	var out []string
	for _, part := range strings.SplitAfter(text, sep) {
		if len(part) > size {
			out = append(out, splitRecursive(part, size, rest)...)
		} else if strings.TrimSpace(part) != "" {
			out = append(out, part)
		}
	}
	return out
}

// hardCut slices text into size-byte pieces without splitting a rune.
func hardCut(text string, size int) []string {
	var out []string
	for len(text) > size {
		cut := size
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		if cut == 0 {
			// size is smaller than the first rune; emit it whole.
			_, cut = utf8.DecodeRuneInString(text)
		}
		out = append(out, text[:cut])
		text = text[cut:]
	}
	if strings.TrimSpace(text) != "" {
		out = append(out, text)
	}
	return out
}

// mergePieces packs adjacent pieces into chunks of roughly size bytes and
// carries an overlap of each chunk's tail into the next. Pieces carry their
// own trailing separators, so packing is plain concatenation.
func mergePieces(pieces []string, size, overlap int) []string {
	var (
		chunks  []string
		current string
	)
	for _, piece := range pieces {
		candidate := current + piece
		if len(candidate) > size && current != "" {
			chunks = append(chunks, strings.TrimSpace(current))
			current = overlapTail(current, overlap) + piece
		} else {
			current = candidate
		}
	}
	if strings.TrimSpace(current) != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}
	return chunks
}

// overlapTail returns up to overlap bytes of text's tail, starting on a
// rune boundary.
func overlapTail(text string, overlap int) string {
	if overlap <= 0 || len(text) <= overlap {
		return ""
	}
	cut := len(text) - overlap
	for cut < len(text) && !utf8.RuneStart(text[cut]) {
		cut++
	}
	return text[cut:]
}
