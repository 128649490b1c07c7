package pantry

import "time"

// Domain Events - Events raised by the inventory controller after a
// successful store write

// ItemAddedEvent is raised when a new item is created in the store
type ItemAddedEvent struct {
	ItemID   string
	Name     string
	Quantity int
	AddedAt  time.Time
}

func (e ItemAddedEvent) EventName() string {
	return "pantry.item.added"
}

func (e ItemAddedEvent) OccurredAt() time.Time {
	return e.AddedAt
}

// ItemUpdatedEvent is raised when an edit session is committed
type ItemUpdatedEvent struct {
	ItemID    string
	Before    Item
	After     Item
	UpdatedAt time.Time
}

func (e ItemUpdatedEvent) EventName() string {
	return "pantry.item.updated"
}

func (e ItemUpdatedEvent) OccurredAt() time.Time {
	return e.UpdatedAt
}

// ItemRemovedEvent is raised when an item is deleted
type ItemRemovedEvent struct {
	ItemID    string
	Name      string
	RemovedAt time.Time
}

func (e ItemRemovedEvent) EventName() string {
	return "pantry.item.removed"
}

func (e ItemRemovedEvent) OccurredAt() time.Time {
	return e.RemovedAt
}

// InventoryLoadedEvent is raised after the list is replaced from the store
type InventoryLoadedEvent struct {
	Count    int
	LoadedAt time.Time
}

func (e InventoryLoadedEvent) EventName() string {
	return "pantry.inventory.loaded"
}

func (e InventoryLoadedEvent) OccurredAt() time.Time {
	return e.LoadedAt
}
