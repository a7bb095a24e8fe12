package classifier

import "strings"

const systemPrompt = "You are an assistant for document analysis."

func buildPrompt(chunk, instructions string, structured bool) string {
	var b strings.Builder
	b.WriteString("Analyze the following text and suggest a category for the file. Also write a short description of it.")
	if structured {
		b.WriteString("\nReturn strict JSON object with keys: category (string), summary (string). No markdown, no extra keys.")
	}
	if instructions = strings.TrimSpace(instructions); instructions != "" {
		b.WriteString(" ")
		b.WriteString(instructions)
	}
	b.WriteString("\n\nText:\n")
	b.WriteString(chunk)
	return b.String()
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
