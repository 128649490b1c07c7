package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/ports/inbound"
)

func newItemsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "List and edit pantry items in the configured store",
	}
	cmd.AddCommand(
		newItemsListCmd(opts),
		newItemsAddCmd(opts),
		newItemsRemoveCmd(opts),
	)
	return cmd
}

// withInventory loads the pantry before calling fn.
func withInventory(cmd *cobra.Command, opts *rootOptions, fn func(context.Context, inbound.InventoryService) error) error {
	cfg, err := opts.load()
	if err != nil {
		return err
	}
	var inv inbound.InventoryService
	return runWith(cmd.Context(), cfg, func(ctx context.Context) error {
		if err := inv.Load(ctx); err != nil {
			return err
		}
		return fn(ctx, inv)
	}, &inv)
}

func newItemsListCmd(opts *rootOptions) *cobra.Command {
	var (
		filter string
		sortBy string
		desc   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the pantry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withInventory(cmd, opts, func(_ context.Context, inv inbound.InventoryService) error {
				if sortBy != "" {
					if err := inv.SortBy(sortBy); err != nil {
						return err
					}
					if desc {
						if err := inv.SortBy(sortBy); err != nil {
							return err
						}
					}
				}
				inv.SetQuery(filter)
				return printItems(cmd.OutOrStdout(), inv.View(), output)
			})
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "case-insensitive name filter")
	cmd.Flags().StringVarP(&sortBy, "sort", "s", "", "sort key: name, quantity or expirationDate")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table or json")
	return cmd
}

func newItemsAddCmd(opts *rootOptions) *cobra.Command {
	var (
		quantity int
		expires  string
		image    string
		catalog  bool
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add an item to the pantry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInventory(cmd, opts, func(ctx context.Context, inv inbound.InventoryService) error {
				inv.BeginNew()
				fields := [][2]string{
					{pantry.EditQuantity, strconv.Itoa(quantity)},
					{pantry.EditExpirationDate, expires},
				}
				if catalog {
					if err := inv.ApplyCatalog(pantry.NewItemID, args[0]); err != nil {
						return err
					}
				} else {
					fields = append(fields, [2]string{pantry.EditName, args[0]})
				}
				if image != "" {
					fields = append(fields, [2]string{pantry.EditImage, image})
				}
				for _, f := range fields {
					if err := inv.UpdateField(pantry.NewItemID, f[0], f[1]); err != nil {
						return err
					}
				}
				if err := inv.AddNew(ctx); err != nil {
					return err
				}
				items := inv.Items()
				added := items[len(items)-1]
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", added.Name, added.ID)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "initial quantity")
	cmd.Flags().StringVarP(&expires, "expires", "e", "", "expiration date, YYYY-MM-DD")
	cmd.Flags().StringVar(&image, "image", "", "image URL")
	cmd.Flags().BoolVar(&catalog, "catalog", false, "fill the image from the ingredient catalog")
	return cmd
}

func newItemsRemoveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withInventory(cmd, opts, func(ctx context.Context, inv inbound.InventoryService) error {
				if err := inv.Remove(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
}

func printItems(w io.Writer, items []pantry.Item, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tQUANTITY\tEXPIRES")
		for _, it := range items {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", it.ID, it.Name, it.Quantity, it.ExpirationDate)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
