package stdlib

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"petra/internal/bridge"
	"petra/internal/interp"
)

// Store is the persistent key/value backing for the store_* builtins,
// one sqlite database per interpreter instance.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the sqlite store at path. ":memory:"
// keeps it process-local.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store open failed (%s): %w", path, err)
	}
	// Interpreter instances are single-goroutine; one connection keeps
	// the in-memory database coherent across builtin calls.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (k TEXT PRIMARY KEY, v TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store schema failed: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Set upserts a key.
func (s *Store) Set(key, value string) error {
	_, err := s.db.Exec(`INSERT INTO kv (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v`, key, value)
	return err
}

// Get reads a key; the second result is false when the key is absent.
func (s *Store) Get(key string) (string, bool, error) {
	var v string
	err := s.db.QueryRow(`SELECT v FROM kv WHERE k = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Delete removes a key, reporting whether it existed.
func (s *Store) Delete(key string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM kv WHERE k = ?`, key)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Keys lists all keys in lexical order.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT k FROM kv ORDER BY k`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// RegisterStore binds the store_* builtins against s. Values pass
// through the bridge's checked string conversion, so numbers store as
// their canonical text and read back convertible.
func RegisterStore(in *interp.Interp, s *Store) error {
	setSpec := bridge.BindSpec{Params: []bridge.Param{
		{Name: "key", Type: bridge.TStr},
		{Name: "value", Type: bridge.TStr},
	}}
	if err := expose(in, "store_set", setSpec, func(c *bridge.Ctx) ([]any, error) {
		if err := s.Set(c.Str("key"), c.Str("value")); err != nil {
			return nil, err
		}
		return []any{true}, nil
	}); err != nil {
		return err
	}

	keySpec := bridge.BindSpec{Params: []bridge.Param{{Name: "key", Type: bridge.TStr}}}
	if err := expose(in, "store_get", keySpec, func(c *bridge.Ctx) ([]any, error) {
		v, ok, err := s.Get(c.Str("key"))
		if err != nil {
			return nil, err
		}
		if !ok {
			return []any{nil}, nil
		}
		return []any{v}, nil
	}); err != nil {
		return err
	}

	if err := expose(in, "store_del", keySpec, func(c *bridge.Ctx) ([]any, error) {
		ok, err := s.Delete(c.Str("key"))
		if err != nil {
			return nil, err
		}
		return []any{ok}, nil
	}); err != nil {
		return err
	}

	if err := expose(in, "store_keys", bridge.BindSpec{}, func(c *bridge.Ctx) ([]any, error) {
		keys, err := s.Keys()
		if err != nil {
			return nil, err
		}
		rt := c.Interp().Runtime()
		arr := rt.Array()
		for _, k := range keys {
			rt.ArrayPush(arr, rt.Str(k))
		}
		ref := rt.Ref(arr)
		rt.Decref(arr)
		return []any{bridge.Owned{C: ref}}, nil
	}); err != nil {
		return err
	}

	return nil
}
