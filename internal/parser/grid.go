package parser

import "strings"

// extractGrid returns the first contiguous block of lines that contain a
// glyph from alphabet, verbatim. It never fails: no alphabet or no matching
// line yields nil.
func extractGrid(text string, alphabet []string) *string {
	if len(alphabet) == 0 {
		return nil
	}

	var block []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if containsAny(line, alphabet) {
			block = append(block, line)
			continue
		}
		if len(block) > 0 {
			break
		}
	}

	if len(block) == 0 {
		return nil
	}
	grid := strings.Join(block, "\n")
	return &grid
}

func containsAny(line string, glyphs []string) bool {
	for _, g := range glyphs {
		if strings.Contains(line, g) {
			return true
		}
	}
	return false
}
