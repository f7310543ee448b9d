package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"

	"licensegate/pkg/license"
	"licensegate/pkg/logger"
)

var (
	db     *pebble.DB
	dbPath string
)

const bindingPrefix = "license:"

// Open opens (or creates) a Pebble database at the given path and keeps a
// global handle for simple usage in this package.
func Open(path string) error {
	var err error
	logger.Info("opening_pebble_db", "path", path)
	db, err = pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", "path", path, "error", err)
		return err
	}
	dbPath = path
	logger.Info("pebble_opened", "path", path)
	return nil
}

// Close closes the opened pebble DB if present.
func Close() error {
	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return err
	}
	db = nil
	logger.Info("pebble_closed")
	return nil
}

// Ready reports whether the store is opened and ready.
func Ready() bool {
	return db != nil
}

func bindingKey(licenseKey string) []byte {
	return []byte(bindingPrefix + licenseKey)
}

// GetBinding returns the binding record for a license key, or nil when no
// record exists yet.
func GetBinding(licenseKey string) (*license.Binding, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	val, closer, err := db.Get(bindingKey(licenseKey))
	if err == pebble.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	var b license.Binding
	if err := json.Unmarshal(val, &b); err != nil {
		return nil, fmt.Errorf("corrupt binding record for %q: %w", licenseKey, err)
	}
	return &b, nil
}

// CreateOrUpdate is the idempotent upsert for one namespace slot: it
// creates the record if absent (fixing productID at creation) and sets
// bindings[ns] only when the slot is currently empty. Callers serialize
// writes per key; this function does no business-rule conflict detection.
func CreateOrUpdate(licenseKey, productID string, ns license.Namespace, identity string) (*license.Binding, error) {
	if db == nil {
		return nil, fmt.Errorf("pebble not opened; call store.Open first")
	}
	b, err := GetBinding(licenseKey)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC().UnixNano()
	if b == nil {
		b = &license.Binding{
			LicenseKey: licenseKey,
			ProductID:  productID,
			Bindings:   map[license.Namespace]string{},
			CreatedTS:  now,
		}
	}
	if b.Bindings == nil {
		b.Bindings = map[license.Namespace]string{}
	}
	if _, ok := b.Bindings[ns]; ok {
		// slot already set: no-op, the first bound identity always wins
		return b, nil
	}
	b.Bindings[ns] = identity
	b.UpdatedTS = now
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal binding: %w", err)
	}
	if err := db.Set(bindingKey(licenseKey), data, pebble.Sync); err != nil {
		logger.Error("save_binding_failed", "license", licenseKey, "error", err)
		return nil, err
	}
	logger.Info("binding_saved", "license", licenseKey, "product", productID, "namespace", string(ns))
	return b, nil
}
