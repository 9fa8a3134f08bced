package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/arloliu/grouper/internal/kvutil"
	"github.com/arloliu/grouper/internal/natsutil"
	"github.com/arloliu/grouper/types"
)

// kvKeyPrefix prefixes every person key in the roster bucket.
const kvKeyPrefix = "person."

// KV implements a roster provider backed by a NATS JetStream KV bucket.
//
// Each person is stored as a JSON value under "person.<base64url(name)>"; the
// name is encoded because KV keys only allow a restricted character set.
// People are listed in latest-write (revision) order: replacing a person
// moves them to the end.
type KV struct {
	kv jetstream.KeyValue
}

var _ types.RosterProvider = (*KV)(nil)

// NewKV wraps an existing KV bucket.
//
// Parameters:
//   - kv: JetStream KV bucket holding the roster
//
// Returns:
//   - *KV: Initialized KV provider
func NewKV(kv jetstream.KeyValue) *KV {
	return &KV{kv: kv}
}

// OpenKV creates or opens the roster bucket and wraps it.
//
// Parameters:
//   - ctx: Context for bucket creation
//   - js: JetStream context
//   - bucket: Bucket name (e.g., "grouper-roster")
//
// Returns:
//   - *KV: Provider over the bucket
//   - error: Bucket creation error
//
// Example:
//
//	js, _ := jetstream.New(nc)
//	src, err := source.OpenKV(ctx, js, "grouper-roster")
func OpenKV(ctx context.Context, js jetstream.JetStream, bucket string) (*KV, error) {
	kv, err := kvutil.OpenRosterBucket(ctx, js, bucket, kvutil.DefaultOpenAttempts)
	if err != nil {
		return nil, fmt.Errorf("failed to open roster bucket: %w", err)
	}

	return NewKV(kv), nil
}

// ListPeople returns every person stored in the bucket.
//
// Returns:
//   - []types.Person: People in latest-write order (empty for an empty bucket)
//   - error: KV error, wrapped with types.ErrConnectivity when the cause is network related
func (k *KV) ListPeople(ctx context.Context) ([]types.Person, error) {
	keys, err := k.kv.Keys(ctx)
	if err != nil {
		if natsutil.IsNoKeysFound(err) {
			return []types.Person{}, nil
		}

		return nil, k.wrap("failed to list roster keys", err)
	}

	type revisioned struct {
		rev    uint64
		person types.Person
	}

	entries := make([]revisioned, 0, len(keys))
	for _, key := range keys {
		if !strings.HasPrefix(key, kvKeyPrefix) {
			continue
		}

		entry, err := k.kv.Get(ctx, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				// Deleted between Keys and Get
				continue
			}

			return nil, k.wrap("failed to read roster entry "+key, err)
		}

		var p types.Person
		if err := json.Unmarshal(entry.Value(), &p); err != nil {
			return nil, fmt.Errorf("failed to decode roster entry %s: %w", key, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("roster entry %s: %w", key, err)
		}

		entries = append(entries, revisioned{rev: entry.Revision(), person: p})
	}

	slices.SortFunc(entries, func(a, b revisioned) int {
		switch {
		case a.rev < b.rev:
			return -1
		case a.rev > b.rev:
			return 1
		default:
			return 0
		}
	})

	people := make([]types.Person, len(entries))
	for i, e := range entries {
		people[i] = e.person
	}

	return people, nil
}

// Put stores or replaces a person.
//
// Replacing an existing person moves them to the end of the listing order,
// since the listing is ordered by latest revision.
//
// Parameters:
//   - ctx: Context for the KV write
//   - p: Person to store
//
// Returns:
//   - error: Validation or KV error
func (k *KV) Put(ctx context.Context, p types.Person) error {
	if err := p.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode person: %w", err)
	}

	if _, err := k.kv.Put(ctx, personKey(p.Name), data); err != nil {
		return k.wrap("failed to store person "+p.Name, err)
	}

	return nil
}

// Delete removes a person by name. Deleting an absent person is not an error.
func (k *KV) Delete(ctx context.Context, name string) error {
	if err := k.kv.Delete(ctx, personKey(name)); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return k.wrap("failed to delete person "+name, err)
	}

	return nil
}

// Import stores every person in order.
//
// Parameters:
//   - ctx: Context for the KV writes
//   - people: People to store
//   - replace: When true, people missing from the list are deleted first
//
// Returns:
//   - error: First validation or KV error. Unlike the SQL source the import
//     is not atomic; people written before the error stay stored
func (k *KV) Import(ctx context.Context, people []types.Person, replace bool) error {
	for _, p := range people {
		if err := p.Validate(); err != nil {
			return err
		}
	}

	if replace {
		if err := k.deleteAll(ctx); err != nil {
			return err
		}
	}

	for _, p := range people {
		if err := k.Put(ctx, p); err != nil {
			return err
		}
	}

	return nil
}

func (k *KV) deleteAll(ctx context.Context) error {
	keys, err := k.kv.Keys(ctx)
	if err != nil {
		if natsutil.IsNoKeysFound(err) {
			return nil
		}

		return k.wrap("failed to list roster keys", err)
	}

	for _, key := range keys {
		if !strings.HasPrefix(key, kvKeyPrefix) {
			continue
		}
		if err := k.kv.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
			return k.wrap("failed to delete roster entry "+key, err)
		}
	}

	return nil
}

func (k *KV) wrap(msg string, err error) error {
	if natsutil.IsConnectivityError(err) {
		return fmt.Errorf("%s: %w", msg, errors.Join(types.ErrConnectivity, err))
	}

	return fmt.Errorf("%s: %w", msg, err)
}

// personKey returns the KV key for a person name.
func personKey(name string) string {
	return kvKeyPrefix + base64.RawURLEncoding.EncodeToString([]byte(name))
}
