package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/interfaces"
)

var (
	ErrNotFound      = interfaces.ErrNotFound
	ErrAlreadyExists = interfaces.ErrAlreadyExists
)

// Collection names without prefix. Also used by the migrate command.
const (
	FormsCollection       = "forms"
	ResponsesCollection   = "responses"
	RespondentsCollection = "respondents"
	UsersCollection       = "users"
	UserEmailsCollection  = "user_emails"
	SessionsCollection    = "sessions"
)

type Firestore struct {
	client   *firestore.Client
	form     *formRepository
	response *responseRepository
	user     *userRepository
	session  *sessionRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.form.collectionPrefix = prefix
		f.response.collectionPrefix = prefix
		f.user.collectionPrefix = prefix
		f.session.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:   client,
		form:     newFormRepository(client),
		response: newResponseRepository(client),
		user:     newUserRepository(client),
		session:  newSessionRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Form() interfaces.FormRepository {
	return f.form
}

func (f *Firestore) Response() interfaces.ResponseRepository {
	return f.response
}

func (f *Firestore) User() interfaces.UserRepository {
	return f.user
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

func prefixed(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
