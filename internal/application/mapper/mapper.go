// Package mapper converts between stored documents and events. It is the only place
// that looks at loosely typed document fields.
package mapper

import (
	"errors"
	"eventplanner/internal/appers"
	"eventplanner/internal/application/entity"
	"eventplanner/pkg/docstore"
	"eventplanner/pkg/validator"
	"fmt"
	"time"
)

const (
	FieldTitle       = "title"
	FieldDate        = "date"
	FieldDescription = "description"
	FieldCreatedAt   = "createdAt"
	FieldUpdatedAt   = "updatedAt"
)

var ErrMalformedDocument = errors.New("malformed event document")

// Store-native timestamp types: protobuf timestamps expose AsTime, BSON datetimes Time.
type (
	asTimer interface{ AsTime() time.Time }
	timer   interface{ Time() time.Time }
)

// ToEvent builds an Event from a snapshot. A missing document is ErrEventNotFound.
func ToEvent(snap *docstore.Snapshot) (*entity.Event, error) {
	if snap == nil || !snap.Exists {
		return nil, appers.ErrEventNotFound
	}
	d := snap.Data

	title := ""
	if v, ok := d[FieldTitle]; ok && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, malformed(snap.ID, FieldTitle, v)
		}
		title = s
	}

	date, err := toTime(d[FieldDate])
	if err != nil {
		return nil, fmt.Errorf("%w: document %s field %s: %v", ErrMalformedDocument, snap.ID, FieldDate, err)
	}

	var description *string
	if v := d[FieldDescription]; v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, malformed(snap.ID, FieldDescription, v)
		}
		description = &s
	}

	return &entity.Event{
		ID:          snap.ID,
		Title:       title,
		Date:        date,
		Description: description,
	}, nil
}

// ToDocument builds the full document for a new event. createdAt is left to the store.
func ToDocument(in entity.EventCreate) docstore.Fields {
	var description any
	if in.Description != nil {
		description = *in.Description
	}
	return docstore.Fields{
		FieldTitle:       in.Title,
		FieldDate:        in.Date,
		FieldDescription: description,
		FieldCreatedAt:   docstore.ServerTimestamp,
	}
}

// ToUpdateFields keeps only the fields the caller set. An empty result means there is
// nothing to write; otherwise updatedAt is stamped by the store.
func ToUpdateFields(in entity.EventUpdate) docstore.Fields {
	fields := docstore.Fields{}
	if in.Title != nil {
		fields[FieldTitle] = *in.Title
	}
	if in.Date != nil {
		fields[FieldDate] = *in.Date
	}
	if in.Description != nil {
		fields[FieldDescription] = *in.Description
	}
	if len(fields) == 0 {
		return fields
	}
	fields[FieldUpdatedAt] = docstore.ServerTimestamp
	return fields
}

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case *time.Time:
		if t == nil {
			return time.Time{}, errors.New("nil time")
		}
		return t.UTC(), nil
	case asTimer:
		return t.AsTime().UTC(), nil
	case timer:
		return t.Time().UTC(), nil
	case string:
		parsed, err := validator.ParseTimestamp(t)
		if err != nil {
			return time.Time{}, err
		}
		return parsed.UTC(), nil
	case nil:
		return time.Time{}, errors.New("missing")
	default:
		return time.Time{}, fmt.Errorf("unsupported type %T", v)
	}
}

func malformed(id, field string, v any) error {
	return fmt.Errorf("%w: document %s field %s has type %T", ErrMalformedDocument, id, field, v)
}
