package generation

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	tokenPattern    = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentencePattern = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`)
	sourcePattern   = regexp.MustCompile(`(?i)\[source (\d+)\]:`)
)

// Extractive answers by ranking context sentences with term frequency
// biased toward question terms. No external services involved; used as
// the standalone provider or as the degraded path when the LLM is down.
type Extractive struct {
	maxSentences int
	stopwords    map[string]struct{}
}

// NewExtractive creates a frequency-based extractive generator.
func NewExtractive(maxSentences int) *Extractive {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	return &Extractive{
		maxSentences: maxSentences,
		stopwords:    defaultStopwords(),
	}
}

// Generate implements the answer generator contract over a prompt built
// by BuildPrompt. Selected sentences keep their [Source N] attribution.
func (e *Extractive) Generate(_ context.Context, prompt string) (string, error) {
	question, contextText := splitPrompt(prompt)

	type sentence struct {
		text   string
		source string
		order  int
	}

	var sentences []sentence
	for _, block := range splitSourceBlocks(contextText) {
		for _, s := range sentencePattern.FindAllString(block.text, -1) {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			sentences = append(sentences, sentence{text: s, source: block.label, order: len(sentences)})
		}
	}

	if len(sentences) == 0 {
		trimmed := strings.TrimSpace(contextText)
		if trimmed == "" {
			return "The provided context contains no usable information to answer the question.", nil
		}
		return trimmed, nil
	}

	// Corpus-wide term frequencies, stopwords excluded.
	freq := map[string]float64{}
	for _, s := range sentences {
		for _, tok := range e.tokens(s.text) {
			if _, ok := e.stopwords[tok]; ok {
				continue
			}
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	questionTokens := map[string]struct{}{}
	for _, tok := range e.tokens(question) {
		if _, ok := e.stopwords[tok]; ok {
			continue
		}
		questionTokens[tok] = struct{}{}
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(sentences))
	for i, s := range sentences {
		toks := e.tokens(s.text)
		score := 0.0
		for _, tok := range toks {
			if v, ok := freq[tok]; ok {
				score += v
			}
			// Question terms count double.
			if _, ok := questionTokens[tok]; ok {
				score += 2.0
			}
		}
		if l := float64(len(toks)); l > 0 {
			score /= math.Sqrt(l)
		}
		scores[i] = scored{i, score}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	n := e.maxSentences
	if n > len(scores) {
		n = len(scores)
	}
	selected := make([]int, n)
	for i := 0; i < n; i++ {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)

	var out []string
	for _, idx := range selected {
		s := sentences[idx]
		if s.source != "" && !strings.Contains(s.text, s.source) {
			out = append(out, s.text+" "+s.source)
		} else {
			out = append(out, s.text)
		}
	}
	return strings.Join(out, " "), nil
}

type sourceBlock struct {
	label string // "[Source N]", empty when the context has no labels
	text  string
}

// splitSourceBlocks cuts the context at "[Source N]:" markers so each
// sentence keeps its attribution.
func splitSourceBlocks(text string) []sourceBlock {
	locs := sourcePattern.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return []sourceBlock{{text: text}}
	}

	blocks := make([]sourceBlock, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		blocks = append(blocks, sourceBlock{
			label: "[Source " + text[loc[2]:loc[3]] + "]",
			text:  text[loc[1]:end],
		})
	}
	return blocks
}

func (e *Extractive) tokens(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by",
		"with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those",
		"from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about",
		"between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too",
		"very", "can", "will", "just", "don", "should", "now", "what", "which", "who", "whom", "how", "when",
		"where", "why", "does", "do", "did",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
