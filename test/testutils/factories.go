// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"

	"github.com/alchemorsel/pantry/internal/domain/pantry"
	"github.com/alchemorsel/pantry/internal/ports/outbound"
)

// ItemFactory provides methods to create test pantry items
type ItemFactory struct {
	faker *gofakeit.Faker
}

// NewItemFactory creates a new item factory with seeded faker
func NewItemFactory(seed int64) *ItemFactory {
	return &ItemFactory{
		faker: gofakeit.New(seed),
	}
}

// Item creates a valid stored item with a random id
func (f *ItemFactory) Item() pantry.Item {
	return pantry.Item{
		ID:             uuid.NewString(),
		Name:           f.faker.Vegetable(),
		Quantity:       f.faker.Number(1, 20),
		Image:          f.faker.URL(),
		ExpirationDate: f.faker.FutureDate().Format("2006-01-02"),
	}
}

// Items creates n valid items
func (f *ItemFactory) Items(n int) []pantry.Item {
	items := make([]pantry.Item, n)
	for i := range items {
		items[i] = f.Item()
	}
	return items
}

// Documents converts items into store documents
func Documents(items ...pantry.Item) []outbound.Document {
	docs := make([]outbound.Document, len(items))
	for i, it := range items {
		docs[i] = outbound.Document{ID: it.ID, Fields: it.Fields()}
	}
	return docs
}

// ItemBuilder provides a fluent interface for building test items
type ItemBuilder struct {
	item pantry.Item
}

// NewItemBuilder creates a new item builder with default values
func NewItemBuilder() *ItemBuilder {
	faker := gofakeit.New(time.Now().UnixNano())

	return &ItemBuilder{
		item: pantry.Item{
			ID:             uuid.NewString(),
			Name:           faker.Fruit(),
			Quantity:       faker.Number(1, 10),
			ExpirationDate: faker.FutureDate().Format("2006-01-02"),
		},
	}
}

// WithID sets the item id
func (b *ItemBuilder) WithID(id string) *ItemBuilder {
	b.item.ID = id
	return b
}

// WithName sets the item name
func (b *ItemBuilder) WithName(name string) *ItemBuilder {
	b.item.Name = name
	return b
}

// WithQuantity sets the item quantity
func (b *ItemBuilder) WithQuantity(q int) *ItemBuilder {
	b.item.Quantity = q
	return b
}

// WithExpirationDate sets the expiration date
func (b *ItemBuilder) WithExpirationDate(date string) *ItemBuilder {
	b.item.ExpirationDate = date
	return b
}

// WithImage sets the image URL
func (b *ItemBuilder) WithImage(url string) *ItemBuilder {
	b.item.Image = url
	return b
}

// Build returns the item
func (b *ItemBuilder) Build() pantry.Item {
	return b.item
}
