package repository_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/formflow/pkg/domain/interfaces"
	"github.com/secmon-lab/formflow/pkg/repository/firestore"
	"github.com/secmon-lab/formflow/pkg/repository/memory"
)

func isNotFound(err error) bool {
	return errors.Is(err, firestore.ErrNotFound) || errors.Is(err, memory.ErrNotFound)
}

func isAlreadyExists(err error) bool {
	return errors.Is(err, firestore.ErrAlreadyExists) || errors.Is(err, memory.ErrAlreadyExists)
}

func newMemoryRepository(t *testing.T) interfaces.Repository {
	return memory.New()
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
	if databaseID == "" {
		t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
	}

	ctx := context.Background()
	repo, err := firestore.New(ctx, projectID, databaseID, firestore.WithCollectionPrefix("test"))
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}

func TestMemoryRepository(t *testing.T) {
	runFormRepositoryTest(t, newMemoryRepository)
	runResponseRepositoryTest(t, newMemoryRepository)
	runUserRepositoryTest(t, newMemoryRepository)
	runSessionRepositoryTest(t, newMemoryRepository)
}

func TestFirestoreRepository(t *testing.T) {
	runFormRepositoryTest(t, newFirestoreRepository)
	runResponseRepositoryTest(t, newFirestoreRepository)
	runUserRepositoryTest(t, newFirestoreRepository)
	runSessionRepositoryTest(t, newFirestoreRepository)
}
