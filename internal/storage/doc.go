// Package storage provides byte-level persistence for accessory configuration.
//
// A Storage moves an opaque byte buffer in and out of some medium. It does not
// interpret the bytes; the accessory layer decides what is encoded into them.
//
// # Backends
//
//   - FileStorage: a single named file, fully replaced on every write
//   - MemoryStorage: an in-process buffer that lives as long as the instance
//   - SQLiteStorage: one row of the storage_blobs table, keyed by name
//
// # Usage
//
//	store, err := storage.Open(cfg.Storage, db)
//	if err != nil {
//	    return err
//	}
//	data, err := store.Read()
//	if err != nil {
//	    // first run: no configuration saved yet
//	}
//
// # Thread Safety
//
// A single Read or Write call is safe in isolation. A read-modify-write
// sequence is not atomic; callers must synchronise it themselves.
package storage
