package firestore

import (
	"context"
	"encoding/json"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// formDocument stores settings as a nested map and fields as their JSON wire
// encoding, so per-type configuration survives without a schema per type.
type formDocument struct {
	ID          string           `firestore:"id"`
	OwnerID     string           `firestore:"owner_id"`
	Title       string           `firestore:"title"`
	Description string           `firestore:"description"`
	Settings    settingsDocument `firestore:"settings"`
	FieldsJSON  string           `firestore:"fields_json"`
	FieldCount  int              `firestore:"field_count"`
	CreatedAt   time.Time        `firestore:"created_at"`
	UpdatedAt   time.Time        `firestore:"updated_at"`
}

type settingsDocument struct {
	RequiresLogin            bool   `firestore:"requires_login"`
	ConfirmationMessage      string `firestore:"confirmation_message"`
	AllowMultipleSubmissions bool   `firestore:"allow_multiple_submissions"`
}

type formRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newFormRepository(client *firestore.Client) *formRepository {
	return &formRepository{client: client}
}

func (r *formRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, FormsCollection))
}

func toFormDocument(record *model.FormRecord) (*formDocument, error) {
	fields := record.Form.Fields
	if fields == nil {
		fields = []model.Field{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal fields", goerr.V("id", record.Form.ID))
	}

	return &formDocument{
		ID:          record.Form.ID.String(),
		OwnerID:     record.OwnerID.String(),
		Title:       record.Form.Title,
		Description: record.Form.Description,
		Settings: settingsDocument{
			RequiresLogin:            record.Form.Settings.RequiresLogin,
			ConfirmationMessage:      record.Form.Settings.ConfirmationMessage,
			AllowMultipleSubmissions: record.Form.Settings.AllowMultipleSubmissions,
		},
		FieldsJSON: string(raw),
		FieldCount: len(fields),
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
	}, nil
}

func toFormRecord(doc *formDocument) (*model.FormRecord, error) {
	var fields []model.Field
	if doc.FieldsJSON != "" {
		if err := json.Unmarshal([]byte(doc.FieldsJSON), &fields); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal fields", goerr.V("id", doc.ID))
		}
	}
	if fields == nil {
		fields = []model.Field{}
	}

	return &model.FormRecord{
		Form: model.Form{
			ID:          types.FormID(doc.ID),
			Title:       doc.Title,
			Description: doc.Description,
			Settings: model.Settings{
				RequiresLogin:            doc.Settings.RequiresLogin,
				ConfirmationMessage:      doc.Settings.ConfirmationMessage,
				AllowMultipleSubmissions: doc.Settings.AllowMultipleSubmissions,
			},
			Fields: fields,
		},
		OwnerID:   types.UserID(doc.OwnerID),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (r *formRepository) Create(ctx context.Context, form *model.Form, owner types.UserID) (*model.FormRecord, error) {
	now := time.Now().UTC()
	record := &model.FormRecord{
		Form:      *form.Clone(),
		OwnerID:   owner,
		CreatedAt: now,
		UpdatedAt: now,
	}

	doc, err := toFormDocument(record)
	if err != nil {
		return nil, err
	}

	if _, err := r.collection().Doc(form.ID.String()).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(ErrAlreadyExists, "form already exists", goerr.V("id", form.ID))
		}
		return nil, goerr.Wrap(err, "failed to create form", goerr.V("id", form.ID))
	}

	return record, nil
}

func (r *formRepository) Get(ctx context.Context, id types.FormID) (*model.FormRecord, error) {
	snap, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get form", goerr.V("id", id))
	}

	var doc formDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal form", goerr.V("id", id))
	}
	return toFormRecord(&doc)
}

func (r *formRepository) Update(ctx context.Context, form *model.Form) (*model.FormRecord, error) {
	docRef := r.collection().Doc(form.ID.String())

	var updated *model.FormRecord
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", form.ID))
			}
			return goerr.Wrap(err, "failed to get form", goerr.V("id", form.ID))
		}

		var existing formDocument
		if err := snap.DataTo(&existing); err != nil {
			return goerr.Wrap(err, "failed to unmarshal form", goerr.V("id", form.ID))
		}

		updated = &model.FormRecord{
			Form:      *form.Clone(),
			OwnerID:   types.UserID(existing.OwnerID),
			CreatedAt: existing.CreatedAt,
			UpdatedAt: time.Now().UTC(),
		}
		doc, err := toFormDocument(updated)
		if err != nil {
			return err
		}
		return tx.Set(docRef, doc)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update form", goerr.V("id", form.ID))
	}

	return updated, nil
}

func (r *formRepository) Delete(ctx context.Context, id types.FormID) error {
	docRef := r.collection().Doc(id.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "form not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get form", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete form", goerr.V("id", id))
	}
	return nil
}

func (r *formRepository) ListByOwner(ctx context.Context, owner types.UserID) ([]*model.FormRecord, error) {
	iter := r.collection().
		Where("owner_id", "==", owner.String()).
		OrderBy("updated_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	records := make([]*model.FormRecord, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate forms", goerr.V("owner_id", owner))
		}

		var doc formDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal form", goerr.V("id", snap.Ref.ID))
		}
		record, err := toFormRecord(&doc)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}
