package state

// Action is the kind of modification tracked for a state entry.
type Action int

const (
	// ActionCache means the entry was read but not modified.
	ActionCache Action = iota
	// ActionInsert means a new entry was created.
	ActionInsert
	// ActionModify means an existing entry was modified.
	ActionModify
	// ActionErase means an entry was deleted.
	ActionErase
)

type trackedEntry struct {
	action   Action
	original []byte // nil for inserts
	current  []byte // nil after erase
}

// ApplyStateTable buffers every modification a transaction makes so the
// engine can commit all of them or none. It wraps a base LedgerView and is
// itself a LedgerView.
type ApplyStateTable struct {
	base  LedgerView
	items map[string]*trackedEntry
}

// NewApplyStateTable creates a buffer over the given base view.
func NewApplyStateTable(base LedgerView) *ApplyStateTable {
	return &ApplyStateTable{
		base:  base,
		items: make(map[string]*trackedEntry),
	}
}

// Read reads an entry, tracking it as cached.
func (t *ApplyStateTable) Read(key string) ([]byte, error) {
	if entry, ok := t.items[key]; ok {
		if entry.action == ActionErase {
			return nil, nil
		}
		return entry.current, nil
	}

	data, err := t.base.Read(key)
	if err != nil {
		return nil, err
	}
	if data != nil {
		t.items[key] = &trackedEntry{action: ActionCache, original: data, current: data}
	}
	return data, nil
}

// Exists checks whether an entry exists in the buffered view.
func (t *ApplyStateTable) Exists(key string) (bool, error) {
	if entry, ok := t.items[key]; ok {
		return entry.action != ActionErase, nil
	}
	return t.base.Exists(key)
}

// Insert adds a new entry to the buffer.
func (t *ApplyStateTable) Insert(key string, data []byte) error {
	if entry, ok := t.items[key]; ok {
		if entry.action != ActionErase {
			return ErrEntryExists
		}
		// Re-inserting a deleted entry becomes a modify.
		entry.action = ActionModify
		entry.current = data
		return nil
	}

	exists, err := t.base.Exists(key)
	if err != nil {
		return err
	}
	if exists {
		return ErrEntryExists
	}
	t.items[key] = &trackedEntry{action: ActionInsert, current: data}
	return nil
}

// Update modifies an existing entry in the buffer.
func (t *ApplyStateTable) Update(key string, data []byte) error {
	if entry, ok := t.items[key]; ok {
		if entry.action == ActionErase {
			return ErrEntryNotFound
		}
		if entry.action == ActionCache {
			entry.action = ActionModify
		}
		entry.current = data
		return nil
	}

	original, err := t.base.Read(key)
	if err != nil {
		return err
	}
	if original == nil {
		return ErrEntryNotFound
	}
	t.items[key] = &trackedEntry{action: ActionModify, original: original, current: data}
	return nil
}

// Erase deletes an entry in the buffer.
func (t *ApplyStateTable) Erase(key string) error {
	if entry, ok := t.items[key]; ok {
		if entry.action == ActionErase {
			return ErrEntryNotFound
		}
		if entry.action == ActionInsert {
			delete(t.items, key)
			return nil
		}
		entry.action = ActionErase
		entry.current = nil
		return nil
	}

	exists, err := t.base.Exists(key)
	if err != nil {
		return err
	}
	if !exists {
		return ErrEntryNotFound
	}
	t.items[key] = &trackedEntry{action: ActionErase}
	return nil
}

// Commit applies every buffered change to the base view. The engine calls it
// exactly once, only after a successful apply; a failed transaction's table
// is simply dropped.
func (t *ApplyStateTable) Commit() error {
	for key, entry := range t.items {
		var err error
		switch entry.action {
		case ActionInsert:
			err = t.base.Insert(key, entry.current)
		case ActionModify:
			err = t.base.Update(key, entry.current)
		case ActionErase:
			err = t.base.Erase(key)
		}
		if err != nil {
			return err
		}
	}
	t.items = make(map[string]*trackedEntry)
	return nil
}
