// Package mock provides a deterministic completion service for development
// and tests. It never calls the network.
package mock

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

var ingredientList = regexp.MustCompile(`ingredients:\s*([^.\n]+)`)

var dishes = []struct{ style, desc string }{
	{"Skillet", "A quick one-pan dinner"},
	{"Salad", "A fresh and light bowl"},
	{"Soup", "A warming pot for cold evenings"},
}

// Client returns the same recipes for the same prompt
type Client struct{}

// NewClient creates a mock completion service
func NewClient() *Client {
	return &Client{}
}

var _ outbound.CompletionService = (*Client)(nil)

// Name implements outbound.CompletionService
func (c *Client) Name() string {
	return "mock"
}

// Complete renders recipes for the ingredients listed in the prompt.
func (c *Client) Complete(ctx context.Context, req outbound.CompletionRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ingredients := []string{"Pantry"}
	if m := ingredientList.FindStringSubmatch(req.Prompt); m != nil {
		ingredients = strings.Split(m[1], ", ")
	}
	main := ingredients[0]

	var b strings.Builder
	for i, d := range dishes {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Recipe %d: %s %s - %s featuring %s.\n", i+1, main, d.style, d.desc, strings.Join(ingredients, ", "))
		fmt.Fprintf(&b, "1. Prepare the %s.\n", strings.ToLower(main))
		fmt.Fprintf(&b, "2. Cook everything together for %d minutes.\n", 10*(i+1))
		b.WriteString("3. Season and serve.\n")
	}
	return b.String(), nil
}
