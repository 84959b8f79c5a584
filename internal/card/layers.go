package card

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// LayerLibraryKey is the store key holding the saved decoration layers.
const LayerLibraryKey = "decoration_layers"

// SaveNamedLayer copies a layer's items into a new library entry and
// rewrites the whole library. An empty name defaults to the save time.
func (s *Service) SaveNamedLayer(layer LayerSnapshot, name string) (*DecorationLayer, error) {
	now := s.clock.Now()
	if name == "" {
		name = layerDisplayName(now)
	}
	entry := DecorationLayer{
		ID:        s.idgen.New(),
		Name:      name,
		Stickers:  cloneStickers(layer.Stickers),
		Texts:     cloneTexts(layer.Texts),
		CreatedAt: now,
	}

	layers, err := s.layersForUpdate()
	if err != nil {
		return nil, err
	}
	layers = append(layers, entry)
	if err := s.writeLayers(layers); err != nil {
		return nil, err
	}

	s.logger.Info("decoration layer saved", "id", entry.ID.String(), "name", entry.Name, "items", len(entry.Stickers)+len(entry.Texts))
	return &entry, nil
}

// NamedLayers returns the library in save order. A missing or unreadable
// library yields an empty list; the failure is logged, never returned.
func (s *Service) NamedLayers() []DecorationLayer {
	layers, err := s.readLayers()
	if err != nil {
		s.logger.Warn("decoration layer library unreadable, using empty library", "error", err)
		return []DecorationLayer{}
	}
	return layers
}

// LoadNamedLayer returns the library entry with the given ID.
func (s *Service) LoadNamedLayer(id uuid.UUID) (*DecorationLayer, bool) {
	for _, l := range s.NamedLayers() {
		if l.ID == id {
			return &l, true
		}
	}
	return nil, false
}

// MostRecentLayer returns the library entry with the latest creation time.
func (s *Service) MostRecentLayer() (*DecorationLayer, bool) {
	var latest *DecorationLayer
	for _, l := range s.NamedLayers() {
		if latest == nil || l.CreatedAt.After(latest.CreatedAt) {
			latest = &l
		}
	}
	return latest, latest != nil
}

// DeleteNamedLayer removes the entry with the given ID.
// Returns false if no such entry exists.
func (s *Service) DeleteNamedLayer(id uuid.UUID) (bool, error) {
	layers, err := s.layersForUpdate()
	if err != nil {
		return false, err
	}
	kept := layers[:0]
	for _, l := range layers {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(layers) {
		return false, nil
	}
	if err := s.writeLayers(kept); err != nil {
		return false, err
	}
	s.logger.Info("decoration layer deleted", "id", id.String())
	return true, nil
}

// ApplyLayer replaces the slot's decoration items with copies of layer's.
// Attachment and visibility are left to the caller.
func (s *Service) ApplyLayer(ws *Workspace, slot Slot, layer DecorationLayer) {
	ws.EditLayer(slot, func(l *DecorationLayerState) { l.Apply(layer) })
}

func (s *Service) readLayers() ([]DecorationLayer, error) {
	data, ok, err := s.store.Get(LayerLibraryKey)
	if err != nil {
		return nil, fmt.Errorf("reading layer library: %w", err)
	}
	if !ok {
		return []DecorationLayer{}, nil
	}
	var layers []DecorationLayer
	if err := json.Unmarshal(data, &layers); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrStoreDecode, LayerLibraryKey, err)
	}
	return layers, nil
}

// layersForUpdate reads the library before a rewrite. An undecodable
// library is replaced; any other read failure aborts the rewrite so that
// saved entries are never lost to a transient store error.
func (s *Service) layersForUpdate() ([]DecorationLayer, error) {
	layers, err := s.readLayers()
	switch {
	case errors.Is(err, ErrStoreDecode):
		s.logger.Warn("decoration layer library undecodable, replacing it", "error", err)
		return []DecorationLayer{}, nil
	case err != nil:
		return nil, err
	}
	return layers, nil
}

func (s *Service) writeLayers(layers []DecorationLayer) error {
	data, err := json.Marshal(layers)
	if err != nil {
		return fmt.Errorf("encoding layer library: %w", err)
	}
	if err := s.store.Set(LayerLibraryKey, data); err != nil {
		return fmt.Errorf("writing layer library: %w", err)
	}
	return nil
}
