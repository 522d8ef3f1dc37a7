package tagging

import (
	"fmt"
	"strings"

	"github.com/Vistiqx/shopify-automation/internal/models"
)

const tagSystemPrompt = `You are a merchandising assistant for an online store.

Rules:
1. Suggest up to 10 short, lower-case tags that a shopper would search for
2. Prefer descriptive multi-word tags (material, style, use, audience)
3. Return ONLY the tags as a comma-separated list, no numbering or explanation`

const categorySystemPrompt = `You are a merchandising assistant for an online store.

Rules:
1. Name the single store collection this product belongs in, in 1-3 words
2. Reply "none" if no sensible collection exists
3. Return ONLY the category name, no punctuation or explanation`

func tagPrompt(p *models.Product) string {
	return fmt.Sprintf("Product title: %s\nProduct description: %s\n\nTags:", p.Title, p.Description)
}

func categoryPrompt(p *models.Product) string {
	return fmt.Sprintf("Product title: %s\nProduct description: %s\n\nCategory:", p.Title, p.Description)
}

// ParseTags normalizes a model reply into tags: split on commas and newlines,
// list markers stripped, lower-cased, de-duplicated, capped at ten.
func ParseTags(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})

	seen := make(map[string]bool, len(fields))
	tags := make([]string, 0, len(fields))
	for _, f := range fields {
		tag := strings.ToLower(cleanItem(f))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
		if len(tags) == maxTags {
			break
		}
	}
	return tags
}

// ParseCategory trims a classification reply down to one label.
func ParseCategory(text string) string {
	line := strings.TrimSpace(text)
	if i := strings.IndexAny(line, "\r\n"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimRight(cleanItem(line), ".")
	line = strings.TrimSpace(line)
	if strings.EqualFold(line, "none") {
		return ""
	}
	return line
}

// cleanItem strips list markers ("-", "*", "•", "1.", "2)") and quotes.
func cleanItem(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, "-*•· ")
	if i := strings.IndexAny(s, ".)"); i > 0 && isDigits(s[:i]) && (i+1 == len(s) || s[i+1] == ' ') {
		s = s[i+1:]
	}
	s = strings.Trim(strings.TrimSpace(s), `"'`+"`")
	return strings.TrimSpace(s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
