package docstore

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore is the Cloud Firestore driver.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore connects with a service-account credentials file. An empty projectID
// is detected from the credentials.
func NewFirestore(ctx context.Context, credentialsPath, projectID string) (*Firestore, error) {
	if _, err := os.Stat(credentialsPath); err != nil {
		return nil, fmt.Errorf("firestore credentials: %w", err)
	}
	if projectID == "" {
		projectID = firestore.DetectProjectID
	}

	client, err := firestore.NewClient(ctx, projectID, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &Firestore{client: client}, nil
}

func (f *Firestore) Collection(name string) Collection {
	return &firestoreCollection{ref: f.client.Collection(name)}
}

// Ping reads at most one document id from a collection that never holds data.
func (f *Firestore) Ping(ctx context.Context) error {
	it := f.client.Collection("_ping").Limit(1).Documents(ctx)
	defer it.Stop()
	if _, err := it.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("firestore ping: %w", err)
	}
	return nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

type firestoreCollection struct {
	ref *firestore.CollectionRef
}

func (c *firestoreCollection) Get(ctx context.Context, id string) (*Snapshot, error) {
	doc, err := c.ref.Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return &Snapshot{ID: id}, nil
	}
	if err != nil {
		return nil, err
	}
	return fromFirestore(doc), nil
}

func (c *firestoreCollection) Set(ctx context.Context, id string, fields Fields) error {
	data := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		data[k] = toFirestoreValue(v)
	}
	_, err := c.ref.Doc(id).Set(ctx, data)
	return err
}

func (c *firestoreCollection) Update(ctx context.Context, id string, fields Fields) error {
	updates := make([]firestore.Update, 0, len(fields))
	for _, k := range sortedKeys(fields) {
		updates = append(updates, firestore.Update{Path: k, Value: toFirestoreValue(fields[k])})
	}
	_, err := c.ref.Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func (c *firestoreCollection) Delete(ctx context.Context, id string) error {
	_, err := c.ref.Doc(id).Delete(ctx)
	return err
}

// OrderedScan fails with FailedPrecondition when the collection lacks an index on
// field; that is reported as ErrOrderingUnavailable.
func (c *firestoreCollection) OrderedScan(ctx context.Context, field string) ([]*Snapshot, error) {
	docs, err := c.ref.OrderBy(field, firestore.Asc).Documents(ctx).GetAll()
	if status.Code(err) == codes.FailedPrecondition {
		return nil, fmt.Errorf("%w: %v", ErrOrderingUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return fromFirestoreAll(docs), nil
}

func (c *firestoreCollection) Scan(ctx context.Context) ([]*Snapshot, error) {
	docs, err := c.ref.Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return fromFirestoreAll(docs), nil
}

func toFirestoreValue(v any) any {
	if IsServerTimestamp(v) {
		return firestore.ServerTimestamp
	}
	return v
}

func fromFirestore(doc *firestore.DocumentSnapshot) *Snapshot {
	if !doc.Exists() {
		return &Snapshot{ID: doc.Ref.ID}
	}
	return &Snapshot{ID: doc.Ref.ID, Exists: true, Data: Fields(doc.Data())}
}

func fromFirestoreAll(docs []*firestore.DocumentSnapshot) []*Snapshot {
	out := make([]*Snapshot, 0, len(docs))
	for _, d := range docs {
		out = append(out, fromFirestore(d))
	}
	return out
}
