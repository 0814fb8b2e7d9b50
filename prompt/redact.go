package prompt

import (
	"regexp"
	"strings"
)

const redacted = "***"

var (
	// name = "value", name: 'value', "name": "value", name := `value`
	reSecretAssign = regexp.MustCompile(`(?i)([\w$]*(?:password|passwd|secret|token|api_?key|apikey|access_?key|private_?key|credential)[\w$]*["']?\s*(?::=|=>|[:=])\s*)("(?:\\.|[^"\\\n])*"|'(?:\\.|[^'\\\n])*'|` + "`[^`]*`" + `)`)
	// NAME=value in shell and dotenv syntax
	reEnvAssign = regexp.MustCompile(`\b([A-Z_]*(?:PASSWORD|SECRET|TOKEN|API_KEY|APIKEY|ACCESS_KEY|PRIVATE_KEY)[A-Z_]*)=([^\s"'` + "`" + `]+)`)
	reBearer    = regexp.MustCompile(`\b(Bearer\s+)[A-Za-z0-9._~+/=-]{16,}`)
	// Well-known key shapes: OpenAI style, GitHub, AWS access key ids.
	reKeyShape = regexp.MustCompile(`\b(?:sk-[A-Za-z0-9_-]{20,}|gh[pousr]_[A-Za-z0-9]{20,}|AKIA[0-9A-Z]{16})\b`)
)

// RedactSecrets replaces string literals assigned to secret-looking names,
// and values that look like API keys, with "***". Quotes are kept.
func RedactSecrets(code string) string {
	code = reSecretAssign.ReplaceAllStringFunc(code, func(m string) string {
		parts := reSecretAssign.FindStringSubmatch(m)
		lit := parts[2]
		q := lit[:1]
		if len(lit) == 2 {
			return m
		}
		if strings.Contains(lit, CursorMarker) {
			return parts[1] + q + redacted + CursorMarker + q
		}
		return parts[1] + q + redacted + q
	})
	code = reEnvAssign.ReplaceAllStringFunc(code, func(m string) string {
		name := m[:strings.IndexByte(m, '=')]
		return name + "=" + redacted
	})
	code = reBearer.ReplaceAllString(code, "${1}"+redacted)
	return reKeyShape.ReplaceAllString(code, redacted)
}
