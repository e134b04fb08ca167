// Package contentstore holds the textual content written to files. Records
// are keyed by bare file name in a single global namespace, decoupled from
// the directory tree: two files with the same name in different directories
// share the same records.
package contentstore

// record is one write. Records are append-only: writes never overwrite or
// deduplicate earlier ones.
type record struct {
	name    string
	content string
}

type Store struct {
	records []record
}

func NewStore() *Store {
	return &Store{}
}

// Write appends a new record for the given file name.
func (store *Store) Write(fileName, content string) {
	store.records = append(store.records, record{name: fileName, content: content})
}

// Read returns the content of the FIRST record for the name: the earliest
// write wins, not the latest. The second return is false if the name has no
// records at all.
func (store *Store) Read(fileName string) (string, bool) {
	for _, rec := range store.records {
		if rec.name == fileName {
			return rec.content, true
		}
	}
	return "", false
}

// Len returns the total number of records, across all names.
func (store *Store) Len() int {
	return len(store.records)
}
