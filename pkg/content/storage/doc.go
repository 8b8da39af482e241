// Package storage provides content.Store backends.
//
// # Backends
//
//   - SQLiteStorage: durable store on github.com/mattn/go-sqlite3 with WAL
//     mode, a versioned schema and publish times kept as Unix nanoseconds.
//   - MemoryStorage: map-backed store for tests and fixture-driven runs.
//
// Both return published items newest first; items sharing a publish time
// keep insertion order, which is the store's natural secondary order.
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
//	    Path:        "data/content.db",
//	    WALMode:     true,
//	    BusyTimeout: 5 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	store.RegisterType(ctx, content.ContentType{Name: "post", Label: "Posts", Public: true})
//	store.PutItem(ctx, &content.Item{ID: "7", Type: "post", Title: "Hello", Status: content.StatusPublish})
package storage
