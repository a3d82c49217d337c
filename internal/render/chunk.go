package render

import "strings"

// DefaultChunkSize keeps messages below Telegram's 4096 character limit.
const DefaultChunkSize = 4000

// Chunk splits text into pieces of at most size characters. It cuts after
// the last newline inside the window when there is one, otherwise mid-line.
func Chunk(text string, size int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}

	runes := []rune(text)
	if len(runes) <= size {
		if text == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	for len(runes) > size {
		cut := size
		for i := size - 1; i > 0; i-- {
			if runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		chunk := strings.TrimRight(string(runes[:cut]), "\n")
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = runes[cut:]
	}
	if rest := strings.TrimRight(string(runes), "\n"); rest != "" {
		chunks = append(chunks, rest)
	}

	return chunks
}
