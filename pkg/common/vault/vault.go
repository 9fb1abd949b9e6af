package vault

// Vault holds serialized key material by subject key identifier.
type Vault interface {
	// Import stores key under ski, replacing any previous value.
	Import(ski string, key []byte) error

	// Get returns the key stored under ski.
	Get(ski string) ([]byte, error)

	// Delete removes the key stored under ski.
	Delete(ski string) error
}
