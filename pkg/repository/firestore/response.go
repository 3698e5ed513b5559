package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type responseDocument struct {
	ID           string                 `firestore:"id"`
	FormID       string                 `firestore:"form_id"`
	SubmittedAt  time.Time              `firestore:"submitted_at"`
	Data         map[string]interface{} `firestore:"data"`
	RespondentID string                 `firestore:"respondent_id"`
}

// respondentDocument marks that a user submitted to a form. Its document ID
// is derived from both IDs so that a second submission collides.
type respondentDocument struct {
	FormID       string `firestore:"form_id"`
	RespondentID string `firestore:"respondent_id"`
	ResponseID   string `firestore:"response_id"`
}

type responseRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newResponseRepository(client *firestore.Client) *responseRepository {
	return &responseRepository{client: client}
}

func (r *responseRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, ResponsesCollection))
}

func (r *responseRepository) respondents() *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, RespondentsCollection))
}

func respondentDocID(formID types.FormID, respondent types.UserID) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(formID.String()+"/"+respondent.String())).String()
}

func toResponseDocument(resp *model.FormResponse) *responseDocument {
	data := make(map[string]interface{}, len(resp.Data))
	for k, v := range resp.Data {
		data[k.String()] = v
	}
	return &responseDocument{
		ID:           resp.ID.String(),
		FormID:       resp.FormID.String(),
		SubmittedAt:  resp.SubmittedAt,
		Data:         data,
		RespondentID: resp.RespondentID.String(),
	}
}

// toFormResponse converts stored values back to the shapes produced by the
// JSON decoder: integers become float64 and lists become []any.
func toFormResponse(doc *responseDocument) *model.FormResponse {
	data := make(map[types.FieldID]any, len(doc.Data))
	for k, v := range doc.Data {
		data[types.FieldID(k)] = normalizeValue(v)
	}
	return &model.FormResponse{
		ID:           types.ResponseID(doc.ID),
		FormID:       types.FormID(doc.FormID),
		SubmittedAt:  doc.SubmittedAt,
		Data:         data,
		RespondentID: types.UserID(doc.RespondentID),
	}
}

func normalizeValue(v interface{}) any {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case []interface{}:
		out := make([]any, len(x))
		for i := range x {
			out[i] = normalizeValue(x[i])
		}
		return out
	default:
		return v
	}
}

func (r *responseRepository) Create(ctx context.Context, resp *model.FormResponse) (*model.FormResponse, error) {
	doc := toResponseDocument(resp)
	if _, err := r.collection().Doc(doc.ID).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(ErrAlreadyExists, "response already exists", goerr.V("id", resp.ID))
		}
		return nil, goerr.Wrap(err, "failed to create response",
			goerr.V("form_id", resp.FormID),
			goerr.V("id", resp.ID))
	}
	return resp.Clone(), nil
}

func (r *responseRepository) CreateOnce(ctx context.Context, resp *model.FormResponse) (*model.FormResponse, error) {
	if resp.RespondentID == "" {
		return r.Create(ctx, resp)
	}

	doc := toResponseDocument(resp)
	markerRef := r.respondents().Doc(respondentDocID(resp.FormID, resp.RespondentID))
	previous := r.collection().
		Where("form_id", "==", doc.FormID).
		Where("respondent_id", "==", doc.RespondentID).
		Limit(1)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(markerRef); err == nil {
			return goerr.Wrap(ErrAlreadyExists, "respondent already submitted")
		} else if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to check respondent marker")
		}

		// responses stored before the marker existed
		snaps, err := tx.Documents(previous).GetAll()
		if err != nil {
			return goerr.Wrap(err, "failed to query previous responses")
		}
		if len(snaps) > 0 {
			return goerr.Wrap(ErrAlreadyExists, "respondent already submitted")
		}

		if err := tx.Create(markerRef, &respondentDocument{
			FormID:       doc.FormID,
			RespondentID: doc.RespondentID,
			ResponseID:   doc.ID,
		}); err != nil {
			return err
		}
		return tx.Create(r.collection().Doc(doc.ID), doc)
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			err = goerr.Wrap(ErrAlreadyExists, err.Error())
		}
		return nil, goerr.Wrap(err, "failed to create response",
			goerr.V("form_id", resp.FormID),
			goerr.V("respondent_id", resp.RespondentID))
	}
	return resp.Clone(), nil
}

func (r *responseRepository) Get(ctx context.Context, formID types.FormID, id types.ResponseID) (*model.FormResponse, error) {
	snap, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "response not found",
				goerr.V("form_id", formID),
				goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get response", goerr.V("id", id))
	}

	var doc responseDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal response", goerr.V("id", id))
	}
	if doc.FormID != formID.String() {
		return nil, goerr.Wrap(ErrNotFound, "response not found",
			goerr.V("form_id", formID),
			goerr.V("id", id))
	}
	return toFormResponse(&doc), nil
}

func (r *responseRepository) ListByForm(ctx context.Context, formID types.FormID) ([]*model.FormResponse, error) {
	iter := r.collection().
		Where("form_id", "==", formID.String()).
		OrderBy("submitted_at", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	responses := make([]*model.FormResponse, 0)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate responses", goerr.V("form_id", formID))
		}

		var doc responseDocument
		if err := snap.DataTo(&doc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal response", goerr.V("id", snap.Ref.ID))
		}
		responses = append(responses, toFormResponse(&doc))
	}
	return responses, nil
}

func (r *responseRepository) CountByForm(ctx context.Context, formID types.FormID) (int, error) {
	iter := r.collection().
		Where("form_id", "==", formID.String()).
		Select().
		Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, goerr.Wrap(err, "failed to count responses", goerr.V("form_id", formID))
		}
		count++
	}
	return count, nil
}

func (r *responseRepository) ExistsByRespondent(ctx context.Context, formID types.FormID, respondent types.UserID) (bool, error) {
	if respondent == "" {
		return false, nil
	}

	iter := r.collection().
		Where("form_id", "==", formID.String()).
		Where("respondent_id", "==", respondent.String()).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	_, err := iter.Next()
	if err == iterator.Done {
		return false, nil
	}
	if err != nil {
		return false, goerr.Wrap(err, "failed to query responses",
			goerr.V("form_id", formID),
			goerr.V("respondent_id", respondent))
	}
	return true, nil
}

func (r *responseRepository) DeleteByForm(ctx context.Context, formID types.FormID) error {
	iter := r.collection().
		Where("form_id", "==", formID.String()).
		Select().
		Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bw.End()
			return goerr.Wrap(err, "failed to iterate responses", goerr.V("form_id", formID))
		}
		if _, err := bw.Delete(snap.Ref); err != nil {
			bw.End()
			return goerr.Wrap(err, "failed to enqueue response deletion", goerr.V("id", snap.Ref.ID))
		}
	}
	bw.End()

	markers := r.respondents().
		Where("form_id", "==", formID.String()).
		Select().
		Documents(ctx)
	defer markers.Stop()

	for {
		snap, err := markers.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate respondent markers", goerr.V("form_id", formID))
		}
		if _, err := snap.Ref.Delete(ctx); err != nil {
			return goerr.Wrap(err, "failed to delete respondent marker", goerr.V("id", snap.Ref.ID))
		}
	}

	return nil
}
