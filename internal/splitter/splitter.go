// Package splitter implements recursive character text splitting with
// overlapping windows.
package splitter

import (
	"fmt"
	"strings"

	"github.com/quarry-labs/docquery/internal/domain"
)

// Defaults match the ingestion pipeline configuration.
const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 200
)

// DefaultSeparators are tried in priority order. The final empty
// separator guarantees termination by splitting per character.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter turns raw text into overlapping fragments by recursively
// descending a separator hierarchy.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// New creates a Splitter. overlap must be smaller than chunkSize.
func New(chunkSize, overlap int, separators ...string) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size %d must be positive: %w", chunkSize, domain.ErrInvalidChunking)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("overlap %d must not be negative: %w", overlap, domain.ErrInvalidChunking)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("overlap %d must be smaller than chunk size %d: %w",
			overlap, chunkSize, domain.ErrInvalidChunking)
	}
	if len(separators) == 0 {
		separators = DefaultSeparators
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap, separators: separators}, nil
}

// Split returns the fragment contents for text. Fragments that are
// empty after trimming are dropped. Blank input is a caller error:
// there is nothing to index.
func (s *Splitter) Split(text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text content to split: %w", domain.ErrEmptyContent)
	}

	var out []string
	for _, chunk := range s.split(text, s.separators) {
		if trimmed := strings.TrimSpace(chunk); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}

// split picks the first separator present in text, splits on it, and
// recurses with the remaining separators for pieces still larger than
// chunkSize. In-budget pieces are merged back into overlapping windows.
func (s *Splitter) split(text string, separators []string) []string {
	sep := separators[len(separators)-1]
	var rest []string
	for i, cand := range separators {
		if cand == "" {
			sep = ""
			rest = nil
			break
		}
		if strings.Contains(text, cand) {
			sep = cand
			rest = separators[i+1:]
			break
		}
	}

	var final []string
	var good []string
	for _, piece := range splitOn(text, sep) {
		if len(piece) < s.chunkSize {
			good = append(good, piece)
			continue
		}
		if len(good) > 0 {
			final = append(final, s.merge(good, sep)...)
			good = nil
		}
		if len(rest) == 0 {
			final = append(final, piece)
		} else {
			final = append(final, s.split(piece, rest)...)
		}
	}
	if len(good) > 0 {
		final = append(final, s.merge(good, sep)...)
	}
	return final
}

// merge recombines adjacent pieces up to chunkSize, sliding the window
// so consecutive chunks share overlap characters from the tail of the
// previous chunk.
func (s *Splitter) merge(pieces []string, sep string) []string {
	sepLen := len(sep)

	var chunks []string
	var window []string
	total := 0

	for _, piece := range pieces {
		pl := len(piece)
		joinLen := 0
		if len(window) > 0 {
			joinLen = sepLen
		}

		if total+pl+joinLen > s.chunkSize && len(window) > 0 {
			if chunk := joinPieces(window, sep); chunk != "" {
				chunks = append(chunks, chunk)
			}
			// Drop leading pieces until the carried tail fits in the
			// overlap budget and the incoming piece fits in the chunk.
			for total > s.overlap || (total+pl+windowJoinLen(window, sepLen) > s.chunkSize && total > 0) {
				total -= len(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}

		window = append(window, piece)
		total += pl
		if len(window) > 1 {
			total += sepLen
		}
	}

	if chunk := joinPieces(window, sep); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func windowJoinLen(window []string, sepLen int) int {
	if len(window) > 0 {
		return sepLen
	}
	return 0
}

func joinPieces(pieces []string, sep string) string {
	return strings.TrimSpace(strings.Join(pieces, sep))
}

// splitOn splits text on sep, dropping empty pieces. The empty
// separator splits per character (rune-wise, so multi-byte text is not
// broken mid-encoding).
func splitOn(text, sep string) []string {
	if sep == "" {
		runes := []rune(text)
		pieces := make([]string, len(runes))
		for i, r := range runes {
			pieces[i] = string(r)
		}
		return pieces
	}

	raw := strings.Split(text, sep)
	pieces := raw[:0]
	for _, p := range raw {
		if p != "" {
			pieces = append(pieces, p)
		}
	}
	return pieces
}
