package generator

import (
	"fmt"

	"github.com/poofware/mono-repo/backend/services/structure-service/internal/catalog"
	"github.com/poofware/mono-repo/backend/services/structure-service/internal/models"
)

// Asset is an uploaded image stamped onto generated units.
type Asset = catalog.File

// UnitTypeConfig holds the attributes shared by every unit of one type.
type UnitTypeConfig struct {
	Key       string            `json:"key"`
	UnitType  string            `json:"unit_type" validate:"required"`
	Area      float64           `json:"area" validate:"gte=0"`
	Facing    models.UnitFacing `json:"facing" validate:"required,facing"`
	Thumbnail *Asset            `json:"-"`
	Gallery   []Asset           `json:"-"`
}

// Registry maps unit types to their configuration. It is built by one
// operator session and only read during a run; it is not safe for
// concurrent mutation.
type Registry struct {
	byKey      map[string]UnitTypeConfig
	keyByLabel map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byKey:      make(map[string]UnitTypeConfig),
		keyByLabel: make(map[string]string),
	}
}

// Put registers or replaces a configuration and returns it with its key.
// A label already bound to another key is rebound to this one.
func (r *Registry) Put(cfg UnitTypeConfig) (UnitTypeConfig, error) {
	if err := validate.Struct(cfg); err != nil {
		return UnitTypeConfig{}, fmt.Errorf("invalid config for unit type %q: %w", cfg.UnitType, err)
	}
	if cfg.Key == "" {
		cfg.Key = MintKey()
	}
	if prev, ok := r.byKey[cfg.Key]; ok && prev.UnitType != cfg.UnitType {
		r.unbindLabel(prev.UnitType, cfg.Key)
	}
	r.byKey[cfg.Key] = cfg
	r.keyByLabel[cfg.UnitType] = cfg.Key
	return cfg, nil
}

// Get looks a configuration up by its exact label. No case or whitespace
// normalization is applied.
func (r *Registry) Get(unitType string) (UnitTypeConfig, bool) {
	key, ok := r.keyByLabel[unitType]
	if !ok {
		return UnitTypeConfig{}, false
	}
	cfg, ok := r.byKey[key]
	return cfg, ok
}

// Lookup resolves the configuration for a mix entry, by key when the entry
// carries one and by label otherwise.
func (r *Registry) Lookup(entry UnitMixEntry) (UnitTypeConfig, bool) {
	if entry.Key != "" {
		cfg, ok := r.byKey[entry.Key]
		return cfg, ok
	}
	return r.Get(entry.UnitType)
}

// Rename changes the display label of a configuration in place.
func (r *Registry) Rename(key, newLabel string) error {
	cfg, ok := r.byKey[key]
	if !ok {
		return fmt.Errorf("no unit type config with key %q", key)
	}
	if newLabel == "" {
		return fmt.Errorf("unit type label must not be empty")
	}
	r.unbindLabel(cfg.UnitType, key)
	cfg.UnitType = newLabel
	r.byKey[key] = cfg
	r.keyByLabel[newLabel] = key
	return nil
}

func (r *Registry) Len() int { return len(r.byKey) }

func (r *Registry) unbindLabel(label, key string) {
	if r.keyByLabel[label] == key {
		delete(r.keyByLabel, label)
	}
}
