package service

import (
	"context"
	"testing"

	"github.com/apexcreative/clientflow/internal/models"
)

type fakeApiKeyRepo struct {
	nextID int64
	keys   map[int64]*models.ApiKey
}

func newFakeApiKeyRepo() *fakeApiKeyRepo {
	return &fakeApiKeyRepo{keys: map[int64]*models.ApiKey{}}
}

func (f *fakeApiKeyRepo) GetByKey(ctx context.Context, apiKey string) (*int64, bool, error) {
	for _, key := range f.keys {
		if key.ApiKey == apiKey {
			return &key.UserID, true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeApiKeyRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.ApiKey, error) {
	var keys []*models.ApiKey
	for _, key := range f.keys {
		if key.UserID == userID {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (f *fakeApiKeyRepo) Create(ctx context.Context, apiKey *models.ApiKey) (int64, error) {
	f.nextID++
	apiKey.ID = f.nextID
	f.keys[apiKey.ID] = apiKey
	return apiKey.ID, nil
}

func (f *fakeApiKeyRepo) CheckByUserID(ctx context.Context, keyID, userID int64) (bool, error) {
	key, ok := f.keys[keyID]
	return ok && key.UserID == userID, nil
}

func (f *fakeApiKeyRepo) Remove(ctx context.Context, id int64) error {
	delete(f.keys, id)
	return nil
}

func TestApiKeyLimit(t *testing.T) {
	repo := newFakeApiKeyRepo()
	svc := NewApiKeyService(repo)

	for i := 0; i < 5; i++ {
		if err := svc.Create(context.Background(), 1); err != nil {
			t.Fatalf("Create() #%d error = %v", i+1, err)
		}
	}
	if err := svc.Create(context.Background(), 1); err == nil {
		t.Fatal("a sixth key must be rejected")
	}

	// the limit is per user
	if err := svc.Create(context.Background(), 2); err != nil {
		t.Errorf("Create() for another user error = %v", err)
	}
}

func TestApiKeyLookupAndRemoval(t *testing.T) {
	repo := newFakeApiKeyRepo()
	svc := NewApiKeyService(repo)

	if err := svc.Create(context.Background(), 1); err != nil {
		t.Fatal(err)
	}
	keys, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 {
		t.Fatalf("keys = %d, want 1", len(keys))
	}

	userID, err := svc.GetUserID(context.Background(), keys[0].ApiKey)
	if err != nil {
		t.Fatalf("GetUserID() error = %v", err)
	}
	if userID != 1 {
		t.Errorf("userID = %d, want 1", userID)
	}

	if _, err := svc.GetUserID(context.Background(), "unknown"); err == nil {
		t.Error("an unknown key must not resolve")
	}

	// another user cannot remove the key
	if err := svc.RemoveAPIKey(context.Background(), 2, keys[0].ID); err == nil {
		t.Error("removing a foreign key must fail")
	}
	if err := svc.RemoveAPIKey(context.Background(), 1, keys[0].ID); err != nil {
		t.Errorf("RemoveAPIKey() error = %v", err)
	}
	if remaining, _ := svc.List(context.Background(), 1); len(remaining) != 0 {
		t.Errorf("keys after removal = %d, want 0", len(remaining))
	}
}
