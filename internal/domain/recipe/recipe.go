// Package recipe turns an ingredient selection into a completion prompt and
// turns the free-text completion back into recipe summaries.
package recipe

import "strings"

// Recipe is a parsed suggestion. It is never persisted.
type Recipe struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FullRecipe  string `json:"fullRecipe"`
}

// Steps splits the full recipe into display lines.
func (r Recipe) Steps() []string {
	if strings.TrimSpace(r.FullRecipe) == "" {
		return nil
	}
	return strings.Split(r.FullRecipe, "\n")
}

// SplitLines is the line-per-recipe contract of the generate-recipes
// endpoint: the trimmed completion split on newlines. Blank input yields an
// empty list.
func SplitLines(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return []string{}
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}
