package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/alchemorsel/pantry/internal/domain/selection"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
)

type suggestOptions struct {
	selected []string
	star     string
	excluded []string
	anyName  bool
	output   string
}

func newSuggestCmd(opts *rootOptions) *cobra.Command {
	so := &suggestOptions{}

	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Ask the completion provider for recipes using pantry ingredients",
		Example: `  pantry suggest --select Tomato --select Lettuce --star Tomato --exclude Cheese
  pantry suggest -s Salmon -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			var (
				inv inbound.InventoryService
				svc inbound.SuggestionService
			)
			return runWith(cmd.Context(), cfg, func(ctx context.Context) error {
				state, err := so.build(ctx, inv)
				if err != nil {
					return err
				}
				result, err := svc.Suggest(ctx, state.Active())
				if err != nil {
					return err
				}
				return printSuggestion(cmd.OutOrStdout(), result, so.output)
			}, &inv, &svc)
		},
	}
	cmd.Flags().StringSliceVarP(&so.selected, "select", "s", nil, "ingredient to use, repeatable")
	cmd.Flags().StringVar(&so.star, "star", "", "selected ingredient to feature as the main one")
	cmd.Flags().StringSliceVarP(&so.excluded, "exclude", "x", nil, "ingredient to leave out, repeatable")
	cmd.Flags().BoolVar(&so.anyName, "any", false, "allow ingredients that are not in the pantry")
	cmd.Flags().StringVarP(&so.output, "output", "o", "text", "output format: text or json")
	_ = cmd.MarkFlagRequired("select")
	return cmd
}

// build loads the pantry and applies the flags to a fresh selection.
func (o *suggestOptions) build(ctx context.Context, inv inbound.InventoryService) (*selection.State, error) {
	state := selection.New()

	if !o.anyName {
		if err := inv.Load(ctx); err != nil {
			return nil, err
		}
		known := make(map[string]bool)
		for _, n := range inv.Names() {
			known[n] = true
		}
		for _, n := range append(append([]string{}, o.selected...), o.excluded...) {
			if !known[n] {
				return nil, fmt.Errorf("%q is not in the pantry (use --any to allow it)", n)
			}
		}
	}

	for _, n := range o.selected {
		if !state.Status(n).IsSelected() {
			state.ToggleSelect(n)
		}
	}
	if o.star != "" {
		if _, err := state.SetStar(o.star); err != nil {
			return nil, fmt.Errorf("--star %q: %w", o.star, err)
		}
	}
	for _, n := range o.excluded {
		if state.Status(n) != selection.Excluded {
			state.ToggleExclude(n)
		}
	}
	return state, nil
}

func printSuggestion(w io.Writer, result *inbound.SuggestionResult, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "text", "":
		if len(result.Recipes) == 0 {
			fmt.Fprintln(w, "No recipes found in the response.")
			return nil
		}
		for i, r := range result.Recipes {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%d. %s\n", i+1, r.Title)
			if r.Description != "" {
				fmt.Fprintf(w, "   %s\n", r.Description)
			}
			for _, line := range r.Steps() {
				if line != "" {
					fmt.Fprintf(w, "   %s\n", line)
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
