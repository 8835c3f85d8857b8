package ports

// IDGenerator mints identifiers for new records.
type IDGenerator interface {
	NewID() string
}
