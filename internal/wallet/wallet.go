// Package wallet owns a directory tree of named, prefixed DID key
// sets: a root index file enumerating known prefixes, and one
// subdirectory per prefix holding that entry's walletkeys.Keys blob.
// Uses a root-index-plus-children persistence shape on plain JSON
// files rather than a sqlite table, since the wallet log here is a
// small, append-mostly, human-auditable artifact rather than a
// queryable transaction history.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/solwall/soldid/internal/chainadapter"
	"github.com/solwall/soldid/internal/keys"
	"github.com/solwall/soldid/internal/walletkeys"
	"github.com/solwall/soldid/pkg/helpers"
	"github.com/solwall/soldid/pkg/logging"
)

const (
	indexFileName = "wallet.json"
	keysFileName  = "keys.json"
	dirPerm       = 0o755
	filePerm      = 0o600
)

// Errors returned by wallet lookups and mutations.
var (
	ErrKeysNameExists = errors.New("a key set with this name already exists")
	ErrPrefixNotFound = errors.New("no key set for prefix")
	ErrNameNotFound   = errors.New("no key set with that name")
	ErrHomeNotFound   = errors.New("wallet home directory not found")
)

// index is the on-disk root file: the set of known prefixes and the
// name each resolves to, so the wallet can enumerate and load entries
// without opening every subdirectory speculatively.
type index struct {
	Entries map[string]string `json:"entries"` // prefix -> name
}

// Wallet is a directory-backed collection of named Keys entries, one
// per DID. It is single-writer: callers do not share a
// Wallet across goroutines without external synchronization beyond
// what mu provides for this process's own bookkeeping.
type Wallet struct {
	mu   sync.Mutex
	root string
	log  *logging.Logger

	byPrefix map[string]*walletkeys.Keys
	byName   map[string]*walletkeys.Keys
}

// Open loads the wallet rooted at dir, creating it (and an empty
// index) if it does not yet exist.
func Open(dir string) (*Wallet, error) {
	if dir == "" {
		return nil, ErrHomeNotFound
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create wallet root: %w", err)
	}

	w := &Wallet{
		root:     dir,
		log:      logging.GetDefault().Component("wallet"),
		byPrefix: make(map[string]*walletkeys.Keys),
		byName:   make(map[string]*walletkeys.Keys),
	}

	idx, err := w.readIndex()
	if err != nil {
		return nil, err
	}
	for prefix, name := range idx.Entries {
		k, err := w.readKeys(prefix)
		if err != nil {
			return nil, fmt.Errorf("load keys for prefix %s: %w", prefix, err)
		}
		w.byPrefix[prefix] = k
		w.byName[name] = k
	}
	w.log.Debug("wallet opened", "root", dir, "entries", len(idx.Entries))
	return w, nil
}

func (w *Wallet) indexPath() string {
	return filepath.Join(w.root, indexFileName)
}

func (w *Wallet) entryDir(prefix string) string {
	return filepath.Join(w.root, prefix)
}

func (w *Wallet) keysPath(prefix string) string {
	return filepath.Join(w.entryDir(prefix), keysFileName)
}

func (w *Wallet) readIndex() (*index, error) {
	data, err := os.ReadFile(w.indexPath())
	if errors.Is(err, os.ErrNotExist) {
		return &index{Entries: make(map[string]string)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read wallet index: %w", err)
	}
	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parse wallet index: %w", err)
	}
	if idx.Entries == nil {
		idx.Entries = make(map[string]string)
	}
	return &idx, nil
}

func (w *Wallet) writeIndex() error {
	idx := index{Entries: make(map[string]string, len(w.byPrefix))}
	for prefix, k := range w.byPrefix {
		idx.Entries[prefix] = k.Name
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal wallet index: %w", err)
	}
	if err := os.WriteFile(w.indexPath(), data, filePerm); err != nil {
		return fmt.Errorf("write wallet index: %w", err)
	}
	return nil
}

func (w *Wallet) readKeys(prefix string) (*walletkeys.Keys, error) {
	data, err := os.ReadFile(w.keysPath(prefix))
	if err != nil {
		return nil, fmt.Errorf("read keys file: %w", err)
	}
	var k walletkeys.Keys
	if err := json.Unmarshal(data, &k); err != nil {
		return nil, fmt.Errorf("parse keys file: %w", err)
	}
	k.Dirty = false
	return &k, nil
}

// writeKeys is a no-op when k is clean (persisting an entry is a
// no-op when not dirty).
func (w *Wallet) writeKeys(k *walletkeys.Keys) error {
	if !k.Dirty {
		return nil
	}
	if err := os.MkdirAll(w.entryDir(k.Prefix), dirPerm); err != nil {
		return fmt.Errorf("create entry directory: %w", err)
	}
	data, err := json.MarshalIndent(k, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal keys: %w", err)
	}
	if err := os.WriteFile(w.keysPath(k.Prefix), data, filePerm); err != nil {
		return fmt.Errorf("write keys file: %w", err)
	}
	k.Dirty = false
	return nil
}

// save persists the index plus every dirty entry.
func (w *Wallet) save() error {
	if err := w.writeIndex(); err != nil {
		return err
	}
	for _, k := range w.byPrefix {
		if err := w.writeKeys(k); err != nil {
			return err
		}
	}
	return nil
}

// NewDID incepts a new named key set and persists it. Returns the
// transaction signature (a placeholder UUID if chain is nil), the new prefix, and
// the inception digest.
func (w *Wallet) NewDID(ctx context.Context, name string, chain chainadapter.Adapter, ks *keys.KeySet, threshold int) (txSignature, prefix, digest string, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.byName[name]; exists {
		return "", "", "", fmt.Errorf("%w: %s", ErrKeysNameExists, name)
	}

	k, err := walletkeys.InceptKeys(ctx, name, chain, ks, threshold)
	if err != nil {
		return "", "", "", err
	}

	w.byPrefix[k.Prefix] = k
	w.byName[k.Name] = k
	if err := w.save(); err != nil {
		return "", "", "", err
	}

	last := k.ChainEvents[len(k.ChainEvents)-1]
	w.log.Info("DID incepted", "name", name, "prefix", k.Prefix)
	return last.TxSignature, k.Prefix, last.Digest, nil
}

// RotateDIDWithPrefix rotates the entry identified by prefix.
func (w *Wallet) RotateDIDWithPrefix(ctx context.Context, prefix string, barren *keys.KeySet, newNext []string, newThreshold *int, chain chainadapter.Adapter) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	k, ok := w.byPrefix[prefix]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPrefixNotFound, prefix)
	}
	return w.rotate(ctx, k, barren, newNext, newThreshold, chain)
}

// RotateDIDWithName rotates the entry identified by name.
func (w *Wallet) RotateDIDWithName(ctx context.Context, name string, barren *keys.KeySet, newNext []string, newThreshold *int, chain chainadapter.Adapter) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	k, ok := w.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNameNotFound, name)
	}
	return w.rotate(ctx, k, barren, newNext, newThreshold, chain)
}

func (w *Wallet) rotate(ctx context.Context, k *walletkeys.Keys, barren *keys.KeySet, newNext []string, newThreshold *int, chain chainadapter.Adapter) error {
	if !barren.IsBarren() {
		return fmt.Errorf("rotate: key set must be barren before hydration")
	}
	if err := k.RotateKeys(ctx, barren, newNext, newThreshold, chain); err != nil {
		return err
	}
	if err := w.save(); err != nil {
		return err
	}
	w.log.Info("DID rotated", "name", k.Name, "prefix", k.Prefix)
	return nil
}

// DecommissionDIDWithPrefix decommissions the entry identified by prefix.
func (w *Wallet) DecommissionDIDWithPrefix(ctx context.Context, prefix string, barren *keys.KeySet, chain chainadapter.Adapter) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	k, ok := w.byPrefix[prefix]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPrefixNotFound, prefix)
	}
	return w.decommission(ctx, k, barren, chain)
}

// DecommissionDIDWithName decommissions the entry identified by name.
func (w *Wallet) DecommissionDIDWithName(ctx context.Context, name string, barren *keys.KeySet, chain chainadapter.Adapter) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	k, ok := w.byName[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNameNotFound, name)
	}
	return w.decommission(ctx, k, barren, chain)
}

func (w *Wallet) decommission(ctx context.Context, k *walletkeys.Keys, barren *keys.KeySet, chain chainadapter.Adapter) error {
	if !barren.IsBarren() {
		return fmt.Errorf("decommission: key set must be barren before hydration")
	}
	if err := k.DecommissionKeys(ctx, barren, chain); err != nil {
		return err
	}
	if err := w.save(); err != nil {
		return err
	}
	w.log.Info("DID decommissioned", "name", k.Name, "prefix", k.Prefix)
	return nil
}

// KeysForPrefix returns the entry identified by prefix.
func (w *Wallet) KeysForPrefix(prefix string) (*walletkeys.Keys, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	k, ok := w.byPrefix[prefix]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPrefixNotFound, prefix)
	}
	return k, nil
}

// KeysForName returns the entry identified by name.
func (w *Wallet) KeysForName(name string) (*walletkeys.Keys, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	k, ok := w.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNameNotFound, name)
	}
	return k, nil
}

// Prefixes returns every known prefix, sorted for stable CLI output.
func (w *Wallet) Prefixes() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]string, 0, len(w.byPrefix))
	for p := range w.byPrefix {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return helpers.CompareBytes([]byte(out[i]), []byte(out[j])) < 0
	})
	return out
}
