// Package generation builds retrieval-augmented prompts and provides an
// extractive fallback generator for deployments without an LLM provider.
package generation

import "strings"

const contextDelimiter = "---------------------"

// BuildPrompt assembles the retrieval-augmented prompt sent to the
// answer generator. Context is expected as "[Source N]: ..." blocks.
func BuildPrompt(query, context string) string {
	var b strings.Builder
	b.WriteString("Context information is below:\n")
	b.WriteString(contextDelimiter)
	b.WriteString("\n")
	b.WriteString(context)
	b.WriteString("\n")
	b.WriteString(contextDelimiter)
	b.WriteString("\n\n")
	b.WriteString("Based on the context information above, please answer the following question. ")
	b.WriteString("If the answer cannot be found in the context, say so clearly. ")
	b.WriteString("Always reference your sources using [Source X] notation.\n\n")
	b.WriteString("Question: ")
	b.WriteString(query)
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// splitPrompt recovers the question and context from a prompt built by
// BuildPrompt. Falls back to treating the whole input as context.
func splitPrompt(prompt string) (question, context string) {
	first := strings.Index(prompt, contextDelimiter)
	last := strings.LastIndex(prompt, contextDelimiter)
	if first < 0 || last <= first {
		return "", prompt
	}

	context = strings.TrimSpace(prompt[first+len(contextDelimiter) : last])

	tail := prompt[last+len(contextDelimiter):]
	if idx := strings.Index(tail, "Question:"); idx >= 0 {
		question = tail[idx+len("Question:"):]
		if end := strings.Index(question, "\n"); end >= 0 {
			question = question[:end]
		}
		question = strings.TrimSpace(question)
	}

	return question, context
}
