package state

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/doubleteemedia40-oss/doublet/internal/backend"
	pkgerrors "github.com/doubleteemedia40-oss/doublet/pkg/errors"
)

// snapshot is the persisted slice of the store. The layout matches the
// doublet-storage blob the storefront has always written, rehydrated
// wholesale at startup.
type snapshot struct {
	CartItems  []backend.CartItem `json:"cartItems"`
	User       *backend.User      `json:"user"`
	Token      string             `json:"token"`
	Categories []string           `json:"categories"`
	Regions    []string           `json:"regions"`
	Platforms  []string           `json:"platforms"`
}

func (s *Store) loadSnapshot() error {
	if s.persistPath == "" {
		return nil
	}
	raw, err := os.ReadFile(s.persistPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read state snapshot")
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode state snapshot")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartItems = snap.CartItems
	s.user = snap.User
	s.token = snap.Token
	if len(snap.Categories) > 0 {
		s.categories = snap.Categories
	}
	if len(snap.Regions) > 0 {
		s.regions = snap.Regions
	}
	if len(snap.Platforms) > 0 {
		s.platforms = snap.Platforms
	}
	return nil
}

// persist writes the snapshot atomically (temp file plus rename). Failures
// are logged, not propagated: losing a snapshot write must not fail the
// action that triggered it.
func (s *Store) persist() {
	if s.persistPath == "" {
		return
	}

	s.mu.Lock()
	snap := snapshot{
		CartItems:  s.cartItems,
		User:       s.user,
		Token:      s.token,
		Categories: s.categories,
		Regions:    s.regions,
		Platforms:  s.platforms,
	}
	s.mu.Unlock()

	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		s.logger.Error(nil, "encode state snapshot", err)
		return
	}

	dir := filepath.Dir(s.persistPath)
	tmp, err := os.CreateTemp(dir, ".doublet-storage-*")
	if err != nil {
		s.logger.Error(nil, "create snapshot temp file", err)
		return
	}
	name := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(name)
		s.logger.Error(nil, "write state snapshot", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		s.logger.Error(nil, "close state snapshot", err)
		return
	}
	if err := os.Rename(name, s.persistPath); err != nil {
		os.Remove(name)
		s.logger.Error(nil, "replace state snapshot", err)
	}
}
