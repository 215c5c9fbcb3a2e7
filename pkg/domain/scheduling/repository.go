package scheduling

// ItemRepository handles persistence of the canonical scheduled items.
type ItemRepository interface {
	LoadItems() ([]ScheduledItem, error)
	SaveItems(items []ScheduledItem) error
	// SaveItem replaces a single item in the canonical store by id.
	SaveItem(item ScheduledItem) error
	// LoadItem returns the canonical item by id, or nil when absent.
	LoadItem(id string) (*ScheduledItem, error)
}
