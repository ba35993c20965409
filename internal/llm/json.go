// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

// ExtractObject returns the first balanced JSON object embedded in text.
// Models often wrap JSON in prose or code fences; this scans past that.
func ExtractObject(text string) (string, bool) {
	return scanBalanced(text, '{', '}')
}

// ExtractArray returns the first balanced JSON array embedded in text.
func ExtractArray(text string) (string, bool) {
	return scanBalanced(text, '[', ']')
}

// scanBalanced finds the first open byte and walks to its matching close,
// tracking string literals and escapes so brackets inside strings do not
// count. Returns false when no balanced payload exists.
func scanBalanced(text string, open, closing byte) (string, bool) {
	start := -1
	for i := 0; i < len(text); i++ {
		if text[i] == open {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
