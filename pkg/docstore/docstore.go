// Package docstore is the document database boundary: schemaless documents addressed
// by collection and id, with a write-time sentinel for server-resolved timestamps.
package docstore

import (
	"context"
	"errors"
	"sort"
)

var (
	// ErrOrderingUnavailable is returned by ordered scans the store cannot serve.
	ErrOrderingUnavailable = errors.New("docstore: ordering unavailable")
	// ErrNotFound is returned by Update when the document does not exist.
	ErrNotFound = errors.New("docstore: document not found")
)

// Fields is a document body as the store returns it: loosely typed values by name.
type Fields map[string]any

type serverTimestamp struct{}

func (serverTimestamp) String() string { return "ServerTimestamp" }

// ServerTimestamp, written as a field value, is replaced by the store's own clock at
// the moment of the write.
var ServerTimestamp any = serverTimestamp{}

// IsServerTimestamp reports whether v is the ServerTimestamp sentinel.
func IsServerTimestamp(v any) bool {
	_, ok := v.(serverTimestamp)
	return ok
}

// Snapshot is the result of reading one document. Data is nil when Exists is false.
type Snapshot struct {
	ID     string
	Exists bool
	Data   Fields
}

// Collection is a named set of documents.
type Collection interface {
	Get(ctx context.Context, id string) (*Snapshot, error)
	// Set overwrites the whole document, creating it when missing.
	Set(ctx context.Context, id string, fields Fields) error
	// Update changes only the given fields of an existing document.
	Update(ctx context.Context, id string, fields Fields) error
	Delete(ctx context.Context, id string) error
	// OrderedScan returns every document ascending by field.
	OrderedScan(ctx context.Context, field string) ([]*Snapshot, error)
	Scan(ctx context.Context) ([]*Snapshot, error)
}

// Store is a connection handle shared by all requests.
type Store interface {
	Collection(name string) Collection
	Ping(ctx context.Context) error
	Close() error
}

// splitSentinels separates plain values from fields carrying ServerTimestamp.
// Sentinel keys come back sorted.
func splitSentinels(fields Fields) (Fields, []string) {
	plain := make(Fields, len(fields))
	var stamps []string
	for k, v := range fields {
		if IsServerTimestamp(v) {
			stamps = append(stamps, k)
			continue
		}
		plain[k] = v
	}
	sort.Strings(stamps)
	return plain, stamps
}

func sortedKeys(fields Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
