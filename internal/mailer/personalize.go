package mailer

import "strings"

// fallbackName is substituted when the recipient has no first name.
const fallbackName = "there"

// Personalize fills the {{name}} and {{shop}} placeholders in a subject or
// body template. Unknown placeholders pass through untouched.
func Personalize(template, firstName, storeName string) string {
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = fallbackName
	}
	out := strings.ReplaceAll(template, "{{name}}", name)
	out = strings.ReplaceAll(out, "{{shop}}", storeName)
	return out
}
