// Package store persists engine snapshots: learned patterns, statistics,
// recent history and settings.
//
// Every backend stores the snapshot as a single JSON document, matching
// the blob the browser front-end keeps in local storage.
package store

import (
	"encoding/json"
	"errors"

	"github.com/ZaguanLabs/codeshift"
)

func encode(snap *codeshift.Snapshot) ([]byte, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, &codeshift.StoreError{Message: "encoding snapshot", Cause: err}
	}
	return data, nil
}

func decode(data []byte) (*codeshift.Snapshot, error) {
	var snap codeshift.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, &codeshift.StoreError{Message: "decoding snapshot", Cause: errors.Join(codeshift.ErrCorruptState, err)}
	}
	return &snap, nil
}
