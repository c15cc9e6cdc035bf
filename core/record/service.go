package record

import (
	"context"
	"encoding/json"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/assistant/core"
)

var errNotAnObject = errors.New("request body must be a JSON object")

// Service provides the CRUD operations of one collection.
// T is the entity type and PT its pointer type.
type Service[T any, PT interface {
	*T
	Document
}] struct {
	schema     Schema
	store      core.DocumentStore
	validate   *validator.Validate
	translator ut.Translator
	now        func() time.Time
}

func NewService[T any, PT interface {
	*T
	Document
}](schema Schema, store core.DocumentStore, validate *validator.Validate, translator ut.Translator) *Service[T, PT] {
	return &Service[T, PT]{
		schema:     schema,
		store:      store,
		validate:   validate,
		translator: translator,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the clock used for timestamps.
func (svc *Service[T, PT]) SetClock(now func() time.Time) {
	svc.now = now
}

func (svc *Service[T, PT]) Schema() Schema { return svc.schema }

func (svc *Service[T, PT]) Now() time.Time { return svc.now() }

func (svc *Service[T, PT]) notFound() error {
	return core.NewNotFoundError(svc.schema.Name)
}

// List returns all the records in the schema's fixed ordering.
func (svc *Service[T, PT]) List(ctx context.Context) ([]T, error) {
	docs, err := svc.store.ListDocuments(ctx, svc.schema.Collection, svc.schema.Ordering)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", svc.schema.Collection)
	}
	recs := make([]T, 0, len(docs))
	for _, doc := range docs {
		var rec T
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, errors.Wrapf(err, "decoding %s document", svc.schema.Collection)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// Get returns the record with the given id.
// Unknown and malformed ids are both reported as a core.NotFoundError.
func (svc *Service[T, PT]) Get(ctx context.Context, id string) (*T, error) {
	doc, err := svc.getDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	var rec T
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, errors.Wrapf(err, "decoding %s document", svc.schema.Collection)
	}
	return &rec, nil
}

func (svc *Service[T, PT]) getDocument(ctx context.Context, id string) (json.RawMessage, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, svc.notFound()
	}
	doc, err := svc.store.GetDocument(ctx, svc.schema.Collection, id)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return nil, svc.notFound()
		}
		return nil, errors.Wrapf(err, "getting %s", svc.schema.Collection)
	}
	return doc, nil
}

// Create decodes payload (a JSON object) into a new record, validates and stores it.
func (svc *Service[T, PT]) Create(ctx context.Context, payload []byte) (*T, error) {
	obj, err := decodeObject(payload)
	if err != nil {
		return nil, err
	}
	delete(obj, keyID)
	delete(obj, keyCreatedAt)
	delete(obj, keyUpdatedAt)
	for _, key := range svc.schema.Protected {
		delete(obj, key)
	}

	var rec T
	if err := svc.decode(obj, &rec); err != nil {
		return nil, err
	}

	now := svc.now()
	meta := PT(&rec).Base()
	meta.ID = uuid.NewString()
	meta.CreatedAt = now
	meta.UpdatedAt = now

	if err := svc.prepare(PT(&rec), now); err != nil {
		return nil, err
	}

	body, err := json.Marshal(&rec)
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %s document", svc.schema.Collection)
	}
	if err := svc.store.InsertDocument(ctx, svc.schema.Collection, meta.ID, body); err != nil {
		return nil, errors.Wrapf(err, "inserting %s", svc.schema.Collection)
	}
	return &rec, nil
}

// Update merges the top-level keys of payload over the stored record (absent keys are left untouched),
// re-validates and stores the result. The last writer wins.
func (svc *Service[T, PT]) Update(ctx context.Context, id string, payload []byte) (*T, error) {
	patch, err := decodeObject(payload)
	if err != nil {
		return nil, err
	}
	doc, err := svc.getDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	var stored map[string]json.RawMessage
	if err := json.Unmarshal(doc, &stored); err != nil {
		return nil, errors.Wrapf(err, "decoding %s document", svc.schema.Collection)
	}
	for key, val := range patch {
		switch key {
		case keyID, keyCreatedAt, keyUpdatedAt:
			continue
		}
		stored[key] = val
	}

	var rec T
	if err := svc.decode(stored, &rec); err != nil {
		return nil, err
	}

	now := svc.now()
	PT(&rec).Base().UpdatedAt = now
	if err := svc.prepare(PT(&rec), now); err != nil {
		return nil, err
	}
	if err := svc.replace(ctx, PT(&rec)); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save validates and stores rec as is, refreshing its update timestamp.
func (svc *Service[T, PT]) Save(ctx context.Context, rec PT) error {
	now := svc.now()
	rec.Base().UpdatedAt = now
	if err := svc.prepare(rec, now); err != nil {
		return err
	}
	return svc.replace(ctx, rec)
}

func (svc *Service[T, PT]) replace(ctx context.Context, rec PT) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrapf(err, "encoding %s document", svc.schema.Collection)
	}
	if err := svc.store.ReplaceDocument(ctx, svc.schema.Collection, rec.Base().ID, body); err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return svc.notFound()
		}
		return errors.Wrapf(err, "replacing %s", svc.schema.Collection)
	}
	return nil
}

// Delete removes the record for good.
func (svc *Service[T, PT]) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return svc.notFound()
	}
	if err := svc.store.DeleteDocument(ctx, svc.schema.Collection, id); err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return svc.notFound()
		}
		return errors.Wrapf(err, "deleting %s", svc.schema.Collection)
	}
	return nil
}

// SwapFlag atomically sets the boolean `field` of a record to `to` if it currently equals `from`.
func (svc *Service[T, PT]) SwapFlag(ctx context.Context, id, field string, from, to bool) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, svc.notFound()
	}
	swapped, err := svc.store.SwapDocumentFlag(ctx, svc.schema.Collection, id, field, from, to)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return false, svc.notFound()
		}
		return false, errors.Wrapf(err, "swapping %s.%s", svc.schema.Collection, field)
	}
	return swapped, nil
}

// prepare cleans the record, applies its defaults and validates it.
func (svc *Service[T, PT]) prepare(rec PT, now time.Time) error {
	if c, ok := any(rec).(cleaner); ok {
		c.Clean()
	}
	if d, ok := any(rec).(defaulter); ok {
		d.SetDefaults(now)
	}
	if err := svc.validate.Struct(rec); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) {
			flds := core.TranslateValidationErrors(vErrs, svc.translator)
			msg := svc.schema.Name + " validation failed: " + core.ValidationError{Fields: flds}.Error()
			return core.NewValidationError(errors.New(msg), flds...)
		}
		return errors.Wrapf(err, "validating %s", svc.schema.Name)
	}
	return nil
}

func (svc *Service[T, PT]) decode(obj map[string]json.RawMessage, rec *T) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return errors.Wrapf(err, "encoding %s payload", svc.schema.Collection)
	}
	if err := json.Unmarshal(data, rec); err != nil {
		return core.NewValidationError(errors.Errorf("%s validation failed: %v", svc.schema.Name, err))
	}
	return nil
}

func decodeObject(payload []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil, core.NewValidationError(errors.Wrap(errNotAnObject, err.Error()))
	}
	if obj == nil {
		return nil, core.NewValidationError(errNotAnObject)
	}
	return obj, nil
}
