// Package kvstore is the durable key-value storage the console session state lives in.
// It plays the part a browser's local storage would: string keys, string values,
// absence meaning "not set".
package kvstore

// Store is a string key to string value store. Writes are last-write-wins.
type Store interface {
	// Get returns the value for key and whether it was present
	Get(key string) (string, bool)

	// Set writes value under key, replacing any previous value
	Set(key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(key string) error
}

const namespaceSeparator = ":"

// Scoped returns a view of store where every key is prefixed with namespace.
// Each console visitor gets its own namespace so their state never collides.
func Scoped(store Store, namespace string) Store {
	return scopedStore{store: store, prefix: namespace + namespaceSeparator}
}

type scopedStore struct {
	store  Store
	prefix string
}

var _ Store = scopedStore{}

func (s scopedStore) Get(key string) (string, bool) {
	return s.store.Get(s.prefix + key)
}

func (s scopedStore) Set(key, value string) error {
	return s.store.Set(s.prefix+key, value)
}

func (s scopedStore) Delete(key string) error {
	return s.store.Delete(s.prefix + key)
}
