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

type userDocument struct {
	ID           string    `firestore:"id"`
	Email        string    `firestore:"email"`
	Name         string    `firestore:"name"`
	PasswordHash []byte    `firestore:"password_hash"`
	CreatedAt    time.Time `firestore:"created_at"`
}

// userEmailDocument reserves an email address for exactly one user
type userEmailDocument struct {
	UserID string `firestore:"user_id"`
}

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{client: client}
}

func (r *userRepository) users() *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, UsersCollection))
}

func (r *userRepository) emails() *firestore.CollectionRef {
	return r.client.Collection(prefixed(r.collectionPrefix, UserEmailsCollection))
}

func (r *userRepository) Create(ctx context.Context, user *auth.User) error {
	userRef := r.users().Doc(user.ID.String())
	emailRef := r.emails().Doc(user.Email)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(emailRef); err == nil {
			return goerr.Wrap(ErrAlreadyExists, "email already registered", goerr.V("email", user.Email))
		} else if status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to check email", goerr.V("email", user.Email))
		}

		if err := tx.Create(emailRef, &userEmailDocument{UserID: user.ID.String()}); err != nil {
			return err
		}
		return tx.Create(userRef, &userDocument{
			ID:           user.ID.String(),
			Email:        user.Email,
			Name:         user.Name,
			PasswordHash: user.PasswordHash,
			CreatedAt:    user.CreatedAt,
		})
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(ErrAlreadyExists, "user already exists", goerr.V("id", user.ID))
		}
		return goerr.Wrap(err, "failed to create user", goerr.V("id", user.ID))
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id types.UserID) (*auth.User, error) {
	snap, err := r.users().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("id", id))
	}

	var doc userDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("id", id))
	}

	return &auth.User{
		ID:           types.UserID(doc.ID),
		Email:        doc.Email,
		Name:         doc.Name,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
	}, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	snap, err := r.emails().Doc(email).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "user not found", goerr.V("email", email))
		}
		return nil, goerr.Wrap(err, "failed to get user email", goerr.V("email", email))
	}

	var doc userEmailDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user email", goerr.V("email", email))
	}
	return r.Get(ctx, types.UserID(doc.UserID))
}
