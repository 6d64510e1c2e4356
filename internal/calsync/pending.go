package calsync

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chris-regnier/focusflow/internal/storage"
)

// Settings keys owned by the sync engine.
const (
	PendingDeletesKey = "calendar.pending_deletes"
	LastSyncKey       = "calendar.last_sync"
	LastResultKey     = "calendar.last_result"
)

// PendingDeletes returns the remote event IDs queued for deletion.
func PendingDeletes(st storage.Storage) ([]string, error) {
	raw, err := st.GetSetting(PendingDeletesKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", PendingDeletesKey, err)
	}
	return ids, nil
}

func savePendingDeletes(st storage.Storage, ids []string) error {
	if len(ids) == 0 {
		err := st.DeleteSetting(PendingDeletesKey)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", PendingDeletesKey, err)
	}
	return st.SetSetting(PendingDeletesKey, string(data))
}

// QueueRemoteDelete records that the remote event googleID must be deleted
// on the next sync. Queuing the same ID twice is a no-op.
func QueueRemoteDelete(st storage.Storage, googleID string) error {
	if googleID == "" {
		return nil
	}
	ids, err := PendingDeletes(st)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == googleID {
			return nil
		}
	}
	return savePendingDeletes(st, append(ids, googleID))
}

// DeleteEvent removes a local event. A linked event also has its remote
// counterpart queued for deletion, so the deletion reaches the remote
// calendar on the next sync even when made offline.
func DeleteEvent(st storage.Storage, id string) error {
	e, err := st.GetEvent(id)
	if err != nil {
		return err
	}
	if e.GoogleID != "" {
		if err := QueueRemoteDelete(st, e.GoogleID); err != nil {
			return fmt.Errorf("queueing remote delete: %w", err)
		}
	}
	return st.DeleteEvent(id)
}
