package recipe

import (
	"fmt"
	"strings"

	"github.com/alchemorsel/pantry/internal/domain/selection"
)

// SystemInstruction is sent with every completion request.
const SystemInstruction = "You are a helpful assistant that generates recipe suggestions based on available ingredients."

// SuggestionCount is how many recipes the prompt asks for.
const SuggestionCount = 3

// BuildPrompt renders the user prompt for a selection. It returns "" when no
// ingredient is selected; callers must not generate in that case. Excluded
// names are only ever listed as forbidden.
func BuildPrompt(active selection.Active) string {
	excluded := make(map[string]struct{}, len(active.Excluded))
	for _, name := range active.Excluded {
		excluded[name] = struct{}{}
	}

	var selected []string
	primary := ""
	for _, name := range active.Selected {
		if _, skip := excluded[name]; skip || strings.TrimSpace(name) == "" {
			continue
		}
		selected = append(selected, name)
		if name == active.Primary {
			primary = name
		}
	}
	if len(selected) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Suggest %d recipes that use these ingredients: %s.\n",
		SuggestionCount, strings.Join(selected, ", "))
	if primary != "" {
		fmt.Fprintf(&b, "The main ingredient is %s and every recipe must feature it.\n", primary)
	}
	if len(active.Excluded) > 0 {
		fmt.Fprintf(&b, "Do not use any of these ingredients: %s.\n",
			strings.Join(active.Excluded, ", "))
	}
	b.WriteString("Format each recipe as a line \"Recipe <number>: <title> - <one sentence description>\" ")
	b.WriteString("followed by numbered preparation steps, and separate recipes with a blank line.")
	return b.String()
}
