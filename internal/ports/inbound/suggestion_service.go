package inbound

import (
	"context"

	"github.com/alchemorsel/pantry/internal/domain/recipe"
	"github.com/alchemorsel/pantry/internal/domain/selection"
)

// SuggestionService generates recipe ideas from an ingredient selection
type SuggestionService interface {
	// Generate sends one prompt and returns the raw completion.
	Generate(ctx context.Context, prompt string) (string, error)
	// Suggest builds the prompt, generates and parses the recipes.
	Suggest(ctx context.Context, active selection.Active) (*SuggestionResult, error)
	LastRecipes() []recipe.Recipe
	ClearRecipes()
}

// SuggestionResult is the outcome of one successful Suggest call
type SuggestionResult struct {
	Prompt        string          `json:"prompt"`
	Recipes       []recipe.Recipe `json:"recipes"`
	ParserVersion string          `json:"parserVersion"`
	Cached        bool            `json:"cached"`
}

// GenerateRecipesCommand is the body of the generate-recipes endpoint
type GenerateRecipesCommand struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
}

// IngredientCommand names one ingredient in a selection request
type IngredientCommand struct {
	Name string `json:"name" validate:"required,max=200"`
}
