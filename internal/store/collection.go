package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tartampluch/ieq-connect/internal/config"
)

// ErrDuplicateID is returned by Append when the id is already present.
var ErrDuplicateID = errors.New(config.ErrDuplicateID)

// Entity is anything stored in a Collection.
type Entity interface {
	Key() string
}

// Collection is one persisted list of entities, stored whole under a single key.
// Every mutation loads the list, changes it, and writes it back in full.
type Collection[T Entity] struct {
	key   string
	store *Store

	// seed is materialised and persisted on the first read of a missing key.
	seed func() []T
	// protected ids are never deleted.
	protected func(id string) bool
	// migrate fixes records on read; returning true re-persists the list.
	migrate func(items []T) bool
	// onUpdate runs after a successful UpdateByID.
	onUpdate func(item T) error
}

// Name returns the storage key of the collection.
func (c *Collection[T]) Name() string { return c.key }

// All returns every stored entity in insertion order.
func (c *Collection[T]) All() ([]T, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.load()
}

// Find returns the entity with id.
func (c *Collection[T]) Find(id string) (T, bool, error) {
	var zero T
	items, err := c.All()
	if err != nil {
		return zero, false, err
	}
	if i := indexOf(items, id); i >= 0 {
		return items[i], true, nil
	}
	return zero, false, nil
}

// Contains reports whether an entity with id is stored.
func (c *Collection[T]) Contains(id string) (bool, error) {
	_, ok, err := c.Find(id)
	return ok, err
}

// Append adds item at the end. A duplicate id is rejected with ErrDuplicateID.
func (c *Collection[T]) Append(item T) error {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	items, err := c.load()
	if err != nil {
		return err
	}
	if indexOf(items, item.Key()) >= 0 {
		return fmt.Errorf("%w: %s %q", ErrDuplicateID, c.key, item.Key())
	}
	if err := c.save(append(items, item)); err != nil {
		return err
	}
	c.log().Debug(config.MsgAppended, config.LogKeyID, item.Key())
	return nil
}

// UpdateByID replaces the entity sharing item's id. A miss is a no-op.
func (c *Collection[T]) UpdateByID(item T) error {
	c.store.mu.Lock()
	items, err := c.load()
	if err != nil {
		c.store.mu.Unlock()
		return err
	}
	i := indexOf(items, item.Key())
	if i < 0 {
		c.store.mu.Unlock()
		c.log().Debug(config.MsgUpdateMiss, config.LogKeyID, item.Key())
		return nil
	}
	items[i] = item
	err = c.save(items)
	c.store.mu.Unlock()
	if err != nil {
		return err
	}
	c.log().Debug(config.MsgUpdated, config.LogKeyID, item.Key())

	if c.onUpdate != nil {
		return c.onUpdate(item)
	}
	return nil
}

// DeleteByID removes the entity with id. A miss or a protected id is a no-op.
func (c *Collection[T]) DeleteByID(id string) error {
	if c.protected != nil && c.protected(id) {
		c.log().Info(config.MsgDeleteProtected, config.LogKeyID, id)
		return nil
	}

	c.store.mu.Lock()
	defer c.store.mu.Unlock()

	items, err := c.load()
	if err != nil {
		return err
	}
	i := indexOf(items, id)
	if i < 0 {
		c.log().Debug(config.MsgDeleteMiss, config.LogKeyID, id)
		return nil
	}
	kept := append(items[:i:i], items[i+1:]...)
	if err := c.save(kept); err != nil {
		return err
	}
	c.log().Debug(config.MsgDeleted, config.LogKeyID, id)
	return nil
}

// load must be called with the store lock held.
func (c *Collection[T]) load() ([]T, error) {
	data, ok, err := c.store.backend.Get(c.key)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", config.ErrStoreRead, c.key, err)
	}

	if !ok {
		items := c.seed()
		if err := c.save(items); err != nil {
			return nil, err
		}
		c.log().Info(config.MsgSeeded, config.LogKeyCount, len(items))
		return items, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%s %q: %w", config.ErrStoreDecode, c.key, err)
	}
	if items == nil {
		items = []T{}
	}

	if c.migrate != nil && c.migrate(items) {
		if err := c.save(items); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// save must be called with the store lock held.
func (c *Collection[T]) save(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%s %q: %w", config.ErrStoreEncode, c.key, err)
	}
	if err := c.store.backend.Set(c.key, data); err != nil {
		return fmt.Errorf("%s %q: %w", config.ErrStoreWrite, c.key, err)
	}
	return nil
}

func (c *Collection[T]) log() *slog.Logger {
	return slog.With(
		config.LogKeyComponent, config.CompStore,
		config.LogKeyCollection, c.key,
	)
}

func indexOf[T Entity](items []T, id string) int {
	for i, it := range items {
		if it.Key() == id {
			return i
		}
	}
	return -1
}
