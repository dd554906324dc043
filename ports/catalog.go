package ports

import "fellingdate/domain/dendro"

// Catalog is the read-only registry of named empirical sapwood datasets.
// Implementations must be safe for concurrent lookups.
type Catalog interface {
	// Lookup returns the dataset registered under name.
	Lookup(name string) (dendro.SapwoodDataset, error)

	// Default returns the documented fallback dataset.
	Default() dendro.SapwoodDataset

	// Names lists all registered dataset names in stable order.
	Names() []string
}
