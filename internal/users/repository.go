// Package users persists the signed-up user list as one JSON array under a
// single key of a kv.Repository.
//
// Every mutator loads the full snapshot, changes it and writes the whole
// list back, returning the list as stored.
package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/userforms/internal/common"
	"github.com/dmitrijs2005/userforms/internal/kv"
	"github.com/dmitrijs2005/userforms/internal/models"
	"github.com/goccy/go-json"
)

// StorageKey is the key the list has always been stored under.
const StorageKey = "signedUpUsers"

type Repository interface {
	List(ctx context.Context) ([]models.UserRecord, error)
	Append(ctx context.Context, u models.UserRecord) ([]models.UserRecord, error)
	UpdateAt(ctx context.Context, i int, u models.UserRecord) ([]models.UserRecord, error)
	RemoveAt(ctx context.Context, i int) ([]models.UserRecord, error)
	Clear(ctx context.Context) error
}

type KVRepository struct {
	store kv.Repository
	key   string
}

func NewKVRepository(store kv.Repository) *KVRepository {
	return &KVRepository{store: store, key: StorageKey}
}

func (r *KVRepository) List(ctx context.Context) ([]models.UserRecord, error) {
	raw, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, err
	}
	return Decode(raw)
}

func (r *KVRepository) Append(ctx context.Context, u models.UserRecord) ([]models.UserRecord, error) {
	return r.mutate(ctx, func(list []models.UserRecord) ([]models.UserRecord, error) {
		return append(list, u.Clone()), nil
	})
}

func (r *KVRepository) UpdateAt(ctx context.Context, i int, u models.UserRecord) ([]models.UserRecord, error) {
	return r.mutate(ctx, func(list []models.UserRecord) ([]models.UserRecord, error) {
		if i < 0 || i >= len(list) {
			return nil, fmt.Errorf("update user %d of %d: %w", i, len(list), common.ErrIndexOutOfRange)
		}
		list[i] = u.Clone()
		return list, nil
	})
}

func (r *KVRepository) RemoveAt(ctx context.Context, i int) ([]models.UserRecord, error) {
	return r.mutate(ctx, func(list []models.UserRecord) ([]models.UserRecord, error) {
		if i < 0 || i >= len(list) {
			return nil, fmt.Errorf("remove user %d of %d: %w", i, len(list), common.ErrIndexOutOfRange)
		}
		return append(list[:i], list[i+1:]...), nil
	})
}

// Clear removes the stored key entirely rather than writing an empty list.
func (r *KVRepository) Clear(ctx context.Context) error {
	return r.store.Delete(ctx, r.key)
}

func (r *KVRepository) mutate(ctx context.Context, fn func([]models.UserRecord) ([]models.UserRecord, error)) ([]models.UserRecord, error) {
	var result []models.UserRecord

	err := kv.Update(ctx, r.store, r.key, func(old []byte) ([]byte, error) {
		list, err := Decode(old)
		if err != nil {
			return nil, err
		}
		if list, err = fn(list); err != nil {
			return nil, err
		}
		raw, err := Encode(list)
		if err != nil {
			return nil, err
		}
		result = list
		return raw, nil
	})
	if err != nil {
		return nil, err
	}

	return models.CloneRecords(result), nil
}

// Decode parses a stored list. An absent value or JSON null is the empty
// list; anything else that is not an array of records is
// common.ErrStoreCorrupted.
func Decode(raw []byte) ([]models.UserRecord, error) {
	list := make([]models.UserRecord, 0)
	if len(raw) == 0 {
		return list, nil
	}

	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStoreCorrupted, err)
	}
	if list == nil {
		return make([]models.UserRecord, 0), nil
	}

	for i := range list {
		if list[i].Fields == nil {
			list[i].Fields = make([]models.FieldDefinition, 0)
		}
	}
	return list, nil
}

// Encode serialises list in the stored format. Fields is always written as
// an array.
func Encode(list []models.UserRecord) ([]byte, error) {
	out := make([]models.UserRecord, len(list))
	for i, u := range list {
		out[i] = u.Clone()
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode users: %w", err)
	}
	return b, nil
}
