package logging

import "regexp"

// secretPatterns match credentials that can end up in prompts, tool
// arguments or provider errors written to the run log.
var secretPatterns = []*regexp.Regexp{
	// key=value and key: value forms, including the X-API-KEY header used by search APIs
	regexp.MustCompile(`(?i)(x-)?(api[_-]?key|apikey|api_secret|secret[_-]?key)\s*[:=]\s*['"]?[a-zA-Z0-9_\-]{16,}['"]?`),
	regexp.MustCompile(`(?i)(client[_-]?secret|secret)\s*[:=]\s*['"]?[a-zA-Z0-9_\-]{16,}['"]?`),
	regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*['"]?[^\s'"]{4,}['"]?`),
	// Authorization headers and bare tokens
	regexp.MustCompile(`(?i)(access[_-]?token|auth[_-]?token|bearer)\s*[:=]?\s*['"]?[a-zA-Z0-9_\-\.]{20,}['"]?`),
	regexp.MustCompile(`sk-(proj-)?[A-Za-z0-9_\-]{20,}`),
	regexp.MustCompile(`gh[pousr]_[A-Za-z0-9_]{36,}`),
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`-----BEGIN\s+(RSA\s+)?PRIVATE\s+KEY-----`),
}

const redacted = "[REDACTED]"

// Redact masks credentials in text.
func Redact(text string) string {
	for _, re := range secretPatterns {
		text = re.ReplaceAllString(text, redacted)
	}
	return text
}
