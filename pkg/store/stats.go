package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/cockroachdb/pebble"

	"licensegate/pkg/license"
)

// Stats is a compact view of the bindings table used by the sweep job.
type Stats struct {
	Records      int
	PerProduct   map[string]int
	PerNamespace map[license.Namespace]int
}

// BindingStats iterates the binding prefix and aggregates counts.
func BindingStats() (Stats, error) {
	s := Stats{PerProduct: map[string]int{}, PerNamespace: map[license.Namespace]int{}}
	if db == nil {
		return s, fmt.Errorf("pebble not opened; call store.Open first")
	}
	prefix := []byte(bindingPrefix)
	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return s, err
	}
	defer iter.Close()
	for iter.SeekGE(prefix); iter.Valid(); iter.Next() {
		if !bytes.HasPrefix(iter.Key(), prefix) {
			break
		}
		var b license.Binding
		if err := json.Unmarshal(iter.Value(), &b); err != nil {
			continue
		}
		s.Records++
		s.PerProduct[b.ProductID]++
		for ns := range b.Bindings {
			s.PerNamespace[ns]++
		}
	}
	return s, nil
}

// DiskUsage returns the best-effort on-disk size of the DB directory.
func DiskUsage() uint64 {
	if dbPath == "" {
		return 0
	}
	var total uint64
	_ = filepath.WalkDir(dbPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += uint64(fi.Size())
		}
		return nil
	})
	return total
}
