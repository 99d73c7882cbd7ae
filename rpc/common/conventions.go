package common

import (
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Conventions
// --------------------------------------------------------------------------

// Conventions describes the naming policy of a document store. It is created
// once per store and then shared read-only by all request channels, sessions
// and key generators of that store. It must not be mutated after the store
// handed it out.
type Conventions struct {
	// IdentityPartSeparator separates the collection prefix from the numeric
	// part of a generated document id (e.g. "orders/42")
	IdentityPartSeparator string

	// HiLoRangeSize is the identifier range size requested from the server
	// whenever a generator runs out of local ids
	HiLoRangeSize uint64
}

// DefaultConventions returns the conventions used when the caller supplies none.
func DefaultConventions() *Conventions {
	return &Conventions{
		IdentityPartSeparator: "/",
		HiLoRangeSize:         32,
	}
}

// CollectionName derives the collection name for a type name.
// "Order" becomes "orders", "OrderLine" becomes "orderlines".
func (c *Conventions) CollectionName(typeName string) string {
	name := strings.ToLower(typeName)
	if name == "" {
		return name
	}
	if !strings.HasSuffix(name, "s") {
		name += "s"
	}
	return name
}

// DocumentID builds a full document id from a collection name and a numeric part.
func (c *Conventions) DocumentID(collection string, n uint64) string {
	return collection + c.IdentityPartSeparator + strconv.FormatUint(n, 10)
}
