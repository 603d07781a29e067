// Package brain is the persistent key-value store the cogs keep their
// per-guild configuration in. Keys are namespaced "cog:guildID:key"
// and values are JSON.
package brain

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// ErrNotFound is returned by Get when no value is stored under the
// requested key.
var ErrNotFound = errors.New("brain: key not found")

type Brain struct {
	db *leveldb.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Brain, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &Brain{db: db}, nil
}

func storeKey(cog, guild, key string) []byte {
	return []byte(cog + ":" + guild + ":" + key)
}

// Put stores v under (cog, guild, key), replacing any previous value.
func (b *Brain) Put(cog, guild, key string, v interface{}) error {
	val, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.db.Put(storeKey(cog, guild, key), val, nil)
}

// Get loads the value stored under (cog, guild, key) into v. Returns
// ErrNotFound when nothing is stored there.
func (b *Brain) Get(cog, guild, key string, v interface{}) error {
	val, err := b.db.Get(storeKey(cog, guild, key), nil)
	if err == leveldb.ErrNotFound {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(val, v)
}

// Delete removes the value under (cog, guild, key). Deleting a missing
// key is not an error.
func (b *Brain) Delete(cog, guild, key string) error {
	return b.db.Delete(storeKey(cog, guild, key), nil)
}

// Keys lists every key stored for (cog, guild), in byte order.
func (b *Brain) Keys(cog, guild string) ([]string, error) {
	prefix := cog + ":" + guild + ":"
	iter := b.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
	defer iter.Release()

	var keys []string
	for iter.Next() {
		keys = append(keys, strings.TrimPrefix(string(iter.Key()), prefix))
	}
	return keys, iter.Error()
}

func (b *Brain) Close() error {
	return b.db.Close()
}
