package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/model/auth"
	"github.com/secmon-lab/formflow/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type sessionDocument struct {
	ID        string    `firestore:"id"`
	UserID    string    `firestore:"user_id"`
	Email     string    `firestore:"email"`
	Name      string    `firestore:"name"`
	ExpiresAt time.Time `firestore:"expires_at"`
	CreatedAt time.Time `firestore:"created_at"`
}

type sessionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSessionRepository(client *firestore.Client) *sessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, SessionsCollection))
}

// PutSession stores session metadata. The signed token itself is never
// persisted.
func (r *Firestore) PutSession(ctx context.Context, session *auth.Session) error {
	if session.ID == "" {
		return goerr.New("session ID is empty")
	}

	doc := &sessionDocument{
		ID:        session.ID.String(),
		UserID:    session.UserID.String(),
		Email:     session.Email,
		Name:      session.Name,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	}
	if _, err := r.session.collection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put session to firestore", goerr.V("session_id", session.ID))
	}
	return nil
}

func (r *Firestore) GetSession(ctx context.Context, id auth.SessionID) (*auth.Session, error) {
	snap, err := r.session.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("session_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get session from firestore", goerr.V("session_id", id))
	}

	var doc sessionDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal session", goerr.V("session_id", id))
	}

	return &auth.Session{
		ID:        auth.SessionID(doc.ID),
		UserID:    types.UserID(doc.UserID),
		Email:     doc.Email,
		Name:      doc.Name,
		ExpiresAt: doc.ExpiresAt,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (r *Firestore) DeleteSession(ctx context.Context, id auth.SessionID) error {
	docRef := r.session.collection().Doc(id.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "session not found", goerr.V("session_id", id))
		}
		return goerr.Wrap(err, "failed to get session from firestore", goerr.V("session_id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete session from firestore", goerr.V("session_id", id))
	}
	return nil
}
