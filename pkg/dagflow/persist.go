package dagflow

import (
	"encoding/json"
	"fmt"

	"github.com/taskweave/dagflow/pkg/dagflow/runstore"
)

// SaveRun persists the run context's current snapshot to the store,
// keyed by run id.
func SaveRun(store runstore.Store, rc *RunContext) error {
	snap := rc.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("serialize run snapshot: %w", err)
	}
	return store.Save(snap.RunID, data)
}

// LoadRun restores a run context from the store.
func LoadRun(store runstore.Store, runID string) (*RunContext, error) {
	data, err := store.Load(runID)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("deserialize run snapshot: %w", err)
	}
	return NewRunContextFromSnapshot(snap), nil
}
