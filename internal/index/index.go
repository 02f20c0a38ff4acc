package index

// ClientIndex defines the interface for client indexing operations.
// Consumers should depend on this interface rather than the concrete
// *DB type to facilitate testing with mocks.
type ClientIndex interface {
	UpsertClient(row ClientRow, body string) error
	DeleteClient(id string) error
	AllIDs() (map[string]struct{}, error)
	Search(query string, limit int) ([]SearchResult, error)
	DocChecksum() (string, error)
	SetDocChecksum(cs string) error
	Close() error
}

// Verify *DB satisfies ClientIndex at compile time.
var _ ClientIndex = (*DB)(nil)
