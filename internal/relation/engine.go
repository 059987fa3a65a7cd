// Package relation flips the presence of like, follow and bookmark records.
//
// The engine reads the current state and then inserts or deletes. The two
// round trips are not atomic; the store's uniqueness index decides races.
// A caller that loses a race sees the state the winner produced and runs no
// effects, so counters and notifications move exactly once per real change.
package relation

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"socialcore/internal/model"
)

// Relation kinds
const (
	KindLike     = "like"
	KindFollow   = "follow"
	KindBookmark = "bookmark"
)

// TargetUser is the target type of follow relations.
const TargetUser = "User"

// Key identifies one relation record by its natural key.
type Key struct {
	Kind       string
	ActorID    string
	TargetType string
	TargetID   string
}

// Store persists relation records.
//
// Insert must return model.ErrRelationExists when the uniqueness index
// rejects the row. Delete must return model.ErrRelationAbsent when no row
// was removed.
type Store interface {
	Exists(ctx context.Context, key Key) (bool, error)
	Insert(ctx context.Context, key Key) error
	Delete(ctx context.Context, key Key) error
}

// Transition describes a change this engine actually performed.
type Transition struct {
	Key    Key
	Active bool
}

// Effect runs after a transition, in registration order. The first failing
// effect stops the rest; the relation change itself stays in place.
type Effect func(ctx context.Context, t Transition) error

type Engine struct {
	store Store
	log   *zap.Logger
}

func NewEngine(store Store, log *zap.Logger) *Engine {
	return &Engine{
		store: store,
		log:   log.With(zap.String("component", "relation")),
	}
}

// Toggle deletes the relation if present and creates it otherwise. It
// reports whether the relation is active after the call.
func (e *Engine) Toggle(ctx context.Context, key Key, effects ...Effect) (bool, error) {
	exists, err := e.store.Exists(ctx, key)
	if err != nil {
		return false, model.Dependency("lookup relation", err)
	}

	if exists {
		changed, err := e.remove(ctx, key)
		if err != nil {
			return false, err
		}
		if !changed {
			return false, nil
		}
		return false, e.apply(ctx, Transition{Key: key, Active: false}, effects)
	}

	changed, err := e.insert(ctx, key)
	if err != nil {
		return false, err
	}
	if !changed {
		return true, nil
	}
	return true, e.apply(ctx, Transition{Key: key, Active: true}, effects)
}

// Add creates the relation. An existing relation fails with
// model.ErrRelationExists; losing an insert race to an identical request
// succeeds without running effects.
func (e *Engine) Add(ctx context.Context, key Key, effects ...Effect) error {
	exists, err := e.store.Exists(ctx, key)
	if err != nil {
		return model.Dependency("lookup relation", err)
	}
	if exists {
		return model.ErrRelationExists
	}

	changed, err := e.insert(ctx, key)
	if err != nil || !changed {
		return err
	}
	return e.apply(ctx, Transition{Key: key, Active: true}, effects)
}

// Remove deletes the relation. A missing relation fails with
// model.ErrRelationAbsent; losing a delete race succeeds without effects.
func (e *Engine) Remove(ctx context.Context, key Key, effects ...Effect) error {
	exists, err := e.store.Exists(ctx, key)
	if err != nil {
		return model.Dependency("lookup relation", err)
	}
	if !exists {
		return model.ErrRelationAbsent
	}

	changed, err := e.remove(ctx, key)
	if err != nil || !changed {
		return err
	}
	return e.apply(ctx, Transition{Key: key, Active: false}, effects)
}

func (e *Engine) insert(ctx context.Context, key Key) (bool, error) {
	err := e.store.Insert(ctx, key)
	if errors.Is(err, model.ErrRelationExists) {
		e.log.Debug("insert lost race, relation already present", keyFields(key)...)
		return false, nil
	}
	if err != nil {
		return false, model.Dependency("insert relation", err)
	}
	e.log.Debug("relation created", keyFields(key)...)
	return true, nil
}

func (e *Engine) remove(ctx context.Context, key Key) (bool, error) {
	err := e.store.Delete(ctx, key)
	if errors.Is(err, model.ErrRelationAbsent) {
		e.log.Debug("delete lost race, relation already gone", keyFields(key)...)
		return false, nil
	}
	if err != nil {
		return false, model.Dependency("delete relation", err)
	}
	e.log.Debug("relation deleted", keyFields(key)...)
	return true, nil
}

func (e *Engine) apply(ctx context.Context, t Transition, effects []Effect) error {
	for _, effect := range effects {
		if err := effect(ctx, t); err != nil {
			e.log.Error("relation effect failed",
				append(keyFields(t.Key), zap.Bool("active", t.Active), zap.Error(err))...)
			return model.Dependency("apply relation effect", err)
		}
	}
	return nil
}

func keyFields(key Key) []zap.Field {
	return []zap.Field{
		zap.String("kind", key.Kind),
		zap.String("actor", key.ActorID),
		zap.String("target_type", key.TargetType),
		zap.String("target", key.TargetID),
	}
}
