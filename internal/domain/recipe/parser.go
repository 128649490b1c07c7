package recipe

import (
	"regexp"
	"strings"
)

// Parser turns a completion into recipes. Implementations never fail:
// text they cannot make sense of yields fewer or zero recipes.
type Parser interface {
	Parse(text string) []Recipe
	Version() string
}

// TextParserVersion identifies the heuristics implemented by TextParser.
const TextParserVersion = "v1"

var (
	recipeMarker  = regexp.MustCompile(`(?i)^(?:#{1,6}\s*)?(?:\*\*)?\s*recipe\s*#?\s*\d*\s*(?:\*\*)?\s*[:.)\-–]\s*`)
	titleLabel    = regexp.MustCompile(`(?i)^(?:\*\*)?title(?:\*\*)?\s*:\s*`)
	descLabel     = regexp.MustCompile(`(?i)^(?:\*\*)?description(?:\*\*)?\s*:\s*`)
	mdHeading     = regexp.MustCompile(`^#{1,6}\s+`)
	boldHeading   = regexp.MustCompile(`^(?:\d+[.)]\s*)?\*\*([^*]+?)\*\*\s*(.*)$`)
	listPrefix    = regexp.MustCompile(`^(?:\d+[.)]|[-*•])\s+`)
	sectionLabel  = regexp.MustCompile(`(?i)^(?:#{1,6}\s*)?(?:\*\*)?(ingredients|instructions|directions|steps|method|preparation)(?:\*\*)?\s*:?\s*(?:\*\*)?$`)
	titleSplitter = regexp.MustCompile(`\s+[-–—]\s+|:\s+`)
)

// TextParser is a tolerant heuristic parser. It recognises explicit recipe
// headings ("Recipe 2: ...", markdown headings, bold lines, "Title:" labels)
// and otherwise falls back to blank-line separated blocks.
type TextParser struct{}

// NewTextParser creates the default parser
func NewTextParser() TextParser {
	return TextParser{}
}

// Version implements Parser
func (TextParser) Version() string {
	return TextParserVersion
}

type block struct {
	heading string
	body    []string
}

// Parse implements Parser
func (TextParser) Parse(text string) []Recipe {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	blocks := markedBlocks(lines)
	if blocks == nil {
		blocks = paragraphBlocks(lines)
	}

	recipes := make([]Recipe, 0, len(blocks))
	for _, b := range blocks {
		if r, ok := b.recipe(); ok {
			recipes = append(recipes, r)
		}
	}
	return recipes
}

// markedBlocks splits on explicit headings. Text before the first heading is
// preamble and is dropped. It returns nil if no heading is present.
func markedBlocks(lines []string) []block {
	var blocks []block
	for _, l := range lines {
		if isHeading(l) {
			blocks = append(blocks, block{heading: l})
			continue
		}
		if len(blocks) > 0 && l != "" {
			last := &blocks[len(blocks)-1]
			last.body = append(last.body, l)
		}
	}
	return blocks
}

func isHeading(l string) bool {
	if l == "" || sectionLabel.MatchString(l) {
		return false
	}
	if recipeMarker.MatchString(l) || titleLabel.MatchString(l) || mdHeading.MatchString(l) {
		return true
	}
	_, _, ok := boldTitle(l)
	return ok
}

// boldTitle accepts "**Title**", "**Title:** text" and "**Title** - text",
// optionally numbered. Bold words inside a sentence are not titles.
func boldTitle(l string) (title, desc string, ok bool) {
	m := boldHeading.FindStringSubmatch(l)
	if m == nil {
		return "", "", false
	}
	title, rest := strings.TrimSpace(m[1]), m[2]
	switch {
	case rest == "", strings.HasSuffix(title, ":"):
	case strings.IndexAny(rest, ":-–") == 0:
		rest = strings.TrimLeft(rest, ":-–")
	default:
		return "", "", false
	}
	return cleanTitle(title), strings.TrimSpace(rest), true
}

// paragraphBlocks groups lines separated by blank lines. A paragraph whose
// lines are all "N. Title - description" items is one recipe per line.
func paragraphBlocks(lines []string) []block {
	var (
		blocks []block
		para   []string
	)
	flush := func() {
		if len(para) == 0 {
			return
		}
		if len(para) > 1 && allSummaryItems(para) {
			for _, l := range para {
				blocks = append(blocks, block{heading: l})
			}
		} else {
			blocks = append(blocks, block{heading: para[0], body: para[1:]})
		}
		para = nil
	}
	for _, l := range lines {
		if l == "" {
			flush()
			continue
		}
		para = append(para, l)
	}
	flush()
	return blocks
}

func allSummaryItems(lines []string) bool {
	for _, l := range lines {
		if !listPrefix.MatchString(l) {
			return false
		}
		_, desc := splitHeading(listPrefix.ReplaceAllString(l, ""))
		if desc == "" {
			return false
		}
	}
	return true
}

func (b block) recipe() (Recipe, bool) {
	title, desc := parseHeading(b.heading)
	if title == "" {
		return Recipe{}, false
	}

	var steps []string
	for _, l := range b.body {
		if m := descLabel.FindStringIndex(l); m != nil {
			if desc == "" {
				desc = strings.TrimSpace(l[m[1]:])
			}
			continue
		}
		if desc == "" && len(steps) == 0 && !listPrefix.MatchString(l) && !sectionLabel.MatchString(l) {
			desc = l
			continue
		}
		steps = append(steps, l)
	}

	// A bare title ("Enjoy!", "# Recipe ideas") carries no recipe.
	if desc == "" && len(steps) == 0 {
		return Recipe{}, false
	}

	return Recipe{
		Title:       title,
		Description: desc,
		FullRecipe:  strings.Join(steps, "\n"),
	}, true
}

// parseHeading strips heading decoration and splits off an inline
// description.
func parseHeading(l string) (title, desc string) {
	switch {
	case recipeMarker.MatchString(l):
		l = recipeMarker.ReplaceAllString(l, "")
	case titleLabel.MatchString(l):
		l = titleLabel.ReplaceAllString(l, "")
	case mdHeading.MatchString(l):
		l = mdHeading.ReplaceAllString(l, "")
	}
	if t, d, ok := boldTitle(l); ok {
		return t, d
	}
	title, desc = splitHeading(listPrefix.ReplaceAllString(l, ""))
	return cleanTitle(title), desc
}

func splitHeading(l string) (string, string) {
	loc := titleSplitter.FindStringIndex(l)
	if loc == nil {
		return l, ""
	}
	return l[:loc[0]], strings.TrimSpace(l[loc[1]:])
}

func cleanTitle(t string) string {
	t = strings.TrimSpace(t)
	t = strings.Trim(t, "*_#\"'")
	t = strings.TrimSuffix(t, ":")
	return strings.TrimSpace(t)
}
