package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mamadbah2/eggtracker/internal/domain/models"
)

// Key names one independently persisted blob.
type Key string

const (
	KeyInventory   Key = "inventory"
	KeyCartons     Key = "cartons"
	KeyCollections Key = "collections"
	KeyModePolicy  Key = "modePolicy"
	KeyPreferences Key = "preferences"
)

// AllKeys lists every blob the core persists.
var AllKeys = []Key{KeyInventory, KeyCartons, KeyCollections, KeyModePolicy, KeyPreferences}

// BlobStore is the raw persistence contract implemented by each backend.
type BlobStore interface {
	// Get returns the blob for key and whether it exists.
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	// Put writes a single blob.
	Put(ctx context.Context, key Key, data []byte) error
	// PutAll atomically replaces every blob. Keys missing from blobs are removed.
	PutAll(ctx context.Context, blobs map[Key][]byte) error
	Close(ctx context.Context) error
}

// State gives typed access to the blobs held by a BlobStore. Missing blobs
// decode to their defaults.
type State struct {
	blobs    BlobStore
	catalog  *models.Catalog
	defaults models.Preferences
}

// NewState wraps a BlobStore.
func NewState(blobs BlobStore, catalog *models.Catalog, defaults models.Preferences) *State {
	return &State{blobs: blobs, catalog: catalog, defaults: defaults}
}

// Catalog returns the catalog the state validates against.
func (s *State) Catalog() *models.Catalog {
	return s.catalog
}

// Close releases the underlying store.
func (s *State) Close(ctx context.Context) error {
	return s.blobs.Close(ctx)
}

// Inventory loads the ledger snapshot.
func (s *State) Inventory(ctx context.Context) (models.Inventory, error) {
	inv := models.Inventory{}
	if err := s.load(ctx, KeyInventory, &inv); err != nil {
		return nil, err
	}
	if inv == nil {
		inv = models.Inventory{}
	}
	return inv, nil
}

// SaveInventory persists the ledger snapshot.
func (s *State) SaveInventory(ctx context.Context, inv models.Inventory) error {
	return s.save(ctx, KeyInventory, inv)
}

// Cartons loads every carton.
func (s *State) Cartons(ctx context.Context) ([]models.Carton, error) {
	var cartons []models.Carton
	if err := s.load(ctx, KeyCartons, &cartons); err != nil {
		return nil, err
	}
	return cartons, nil
}

// SaveCartons persists every carton.
func (s *State) SaveCartons(ctx context.Context, cartons []models.Carton) error {
	if cartons == nil {
		cartons = []models.Carton{}
	}
	return s.save(ctx, KeyCartons, cartons)
}

// Collections loads the collection history in insertion order.
func (s *State) Collections(ctx context.Context) ([]models.CollectionRecord, error) {
	var records []models.CollectionRecord
	if err := s.load(ctx, KeyCollections, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// SaveCollections persists the collection history.
func (s *State) SaveCollections(ctx context.Context, records []models.CollectionRecord) error {
	if records == nil {
		records = []models.CollectionRecord{}
	}
	return s.save(ctx, KeyCollections, records)
}

// ModePolicy loads the mode policy, defaulting when never saved.
func (s *State) ModePolicy(ctx context.Context) (models.ModePolicy, error) {
	var policy models.ModePolicy
	found, err := s.loadFound(ctx, KeyModePolicy, &policy)
	if err != nil {
		return models.ModePolicy{}, err
	}
	if !found {
		return models.DefaultModePolicy(s.catalog), nil
	}
	if policy.EnabledCategories == nil {
		policy.EnabledCategories = map[models.CategoryID]bool{}
	}
	return policy, nil
}

// SaveModePolicy persists the mode policy.
func (s *State) SaveModePolicy(ctx context.Context, policy models.ModePolicy) error {
	return s.save(ctx, KeyModePolicy, policy)
}

// Preferences loads user preferences, defaulting when never saved.
func (s *State) Preferences(ctx context.Context) (models.Preferences, error) {
	prefs := s.defaultPreferences()
	if err := s.load(ctx, KeyPreferences, &prefs); err != nil {
		return models.Preferences{}, err
	}
	return prefs, nil
}

// SavePreferences persists user preferences.
func (s *State) SavePreferences(ctx context.Context, prefs models.Preferences) error {
	return s.save(ctx, KeyPreferences, prefs)
}

// Snapshot reads every blob.
func (s *State) Snapshot(ctx context.Context) (models.Backup, error) {
	var (
		b   models.Backup
		err error
	)
	if b.Inventory, err = s.Inventory(ctx); err != nil {
		return models.Backup{}, err
	}
	if b.Cartons, err = s.Cartons(ctx); err != nil {
		return models.Backup{}, err
	}
	if b.Collections, err = s.Collections(ctx); err != nil {
		return models.Backup{}, err
	}
	if b.ModePolicy, err = s.ModePolicy(ctx); err != nil {
		return models.Backup{}, err
	}
	if b.Preferences, err = s.Preferences(ctx); err != nil {
		return models.Backup{}, err
	}
	return b, nil
}

// ReplaceAll atomically overwrites every blob with the backup contents.
func (s *State) ReplaceAll(ctx context.Context, b models.Backup) error {
	blobs, err := encodeBackup(b)
	if err != nil {
		return err
	}
	if err := s.blobs.PutAll(ctx, blobs); err != nil {
		return fmt.Errorf("replace all blobs: %w", err)
	}
	return nil
}

// ClearAll atomically resets every blob to its default.
func (s *State) ClearAll(ctx context.Context) error {
	return s.ReplaceAll(ctx, models.Backup{
		Inventory:   models.Inventory{},
		Cartons:     []models.Carton{},
		Collections: []models.CollectionRecord{},
		ModePolicy:  models.DefaultModePolicy(s.catalog),
		Preferences: s.defaultPreferences(),
	})
}

func (s *State) defaultPreferences() models.Preferences {
	prefs := s.defaults
	prefs.FlockCounts = make(map[models.Species]int, len(s.defaults.FlockCounts))
	for k, v := range s.defaults.FlockCounts {
		prefs.FlockCounts[k] = v
	}
	return prefs
}

func (s *State) load(ctx context.Context, key Key, dst any) error {
	_, err := s.loadFound(ctx, key, dst)
	return err
}

func (s *State) loadFound(ctx context.Context, key Key, dst any) (bool, error) {
	data, found, err := s.blobs.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !found || len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *State) save(ctx context.Context, key Key, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func encodeBackup(b models.Backup) (map[Key][]byte, error) {
	if b.Inventory == nil {
		b.Inventory = models.Inventory{}
	}
	if b.Cartons == nil {
		b.Cartons = []models.Carton{}
	}
	if b.Collections == nil {
		b.Collections = []models.CollectionRecord{}
	}
	values := map[Key]any{
		KeyInventory:   b.Inventory,
		KeyCartons:     b.Cartons,
		KeyCollections: b.Collections,
		KeyModePolicy:  b.ModePolicy,
		KeyPreferences: b.Preferences,
	}
	blobs := make(map[Key][]byte, len(values))
	for key, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		blobs[key] = data
	}
	return blobs, nil
}
