// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package registry

import (
	"encoding/json"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/raiders/fault"
	"github.com/bitmark-inc/raiders/ledger"
)

// key prefixes, one byte ahead of each record
const (
	entryPrefix  = 'R'
	schemaPrefix = 'S'
)

// layout of the entries written by this code
const currentSchema = 1

const (
	defaultTimeout    = 1 * time.Minute
	defaultExpiration = 2 * time.Minute
)

// pool access modes
const (
	ReadOnly  = true
	ReadWrite = false
)

// LevelDB - store backed by a leveldb database
type LevelDB struct {
	sync.RWMutex
	db    *leveldb.DB
	cache *cache.Cache
	log   *logger.L
}

type schemaRecord struct {
	Schema int `json:"schema"`
}

// OpenLevelDB - open or create the database
//
// a database written by a newer schema is refused
func OpenLevelDB(name string, readOnly bool) (*LevelDB, error) {
	log := logger.New("registry")

	db, err := leveldb.OpenFile(name, &ldb_opt.Options{
		ErrorIfMissing: readOnly,
		ReadOnly:       readOnly,
	})
	if nil != err {
		return nil, err
	}

	schema, err := checkSchema(db, readOnly)
	if nil != err {
		log.Criticalf("open: %s  schema: %d  error: %s", name, schema, err)
		db.Close()
		return nil, err
	}
	log.Debugf("open: %s  schema: %d", name, schema)

	return &LevelDB{
		db:    db,
		cache: cache.New(defaultTimeout, defaultExpiration),
		log:   log,
	}, nil
}

// schema of an existing database, tagging an empty writable one
func checkSchema(db *leveldb.DB, readOnly bool) (int, error) {
	k := []byte{schemaPrefix}

	value, err := db.Get(k, nil)
	if leveldb.ErrNotFound == err {
		if readOnly {
			return 0, nil
		}
		value, err = json.Marshal(schemaRecord{Schema: currentSchema})
		if nil != err {
			return 0, err
		}
		return currentSchema, db.Put(k, value, nil)
	} else if nil != err {
		return 0, err
	}

	var r schemaRecord
	err = json.Unmarshal(value, &r)
	if nil != err {
		return 0, fault.ErrRegistrySchema
	}
	if r.Schema < 1 || r.Schema > currentSchema {
		return r.Schema, fault.ErrRegistrySchema
	}
	return r.Schema, nil
}

func prefixedKey(key Key) []byte {
	s := key.String()
	k := make([]byte, 1, 1+len(s))
	k[0] = entryPrefix
	return append(k, s...)
}

// Get - fetch one entry, from the cache when possible
func (l *LevelDB) Get(key Key) (*ledger.UTxO, error) {
	l.RLock()
	defer l.RUnlock()

	if nil == l.db {
		return nil, fault.ErrNotInitialised
	}

	k := prefixedKey(key)
	if obj, found := l.cache.Get(string(k)); found {
		u := obj.(ledger.UTxO)
		return &u, nil
	}

	value, err := l.db.Get(k, nil)
	if leveldb.ErrNotFound == err {
		return nil, fault.ErrDeploymentNotFound
	} else if nil != err {
		return nil, err
	}

	var u ledger.UTxO
	err = json.Unmarshal(value, &u)
	if nil != err {
		l.log.Errorf("decode key: %s  error: %s", key, err)
		return nil, err
	}
	l.cache.Set(string(k), u, defaultExpiration)
	return &u, nil
}

// Put - replace one entry
func (l *LevelDB) Put(key Key, utxo ledger.UTxO) error {
	l.Lock()
	defer l.Unlock()

	if nil == l.db {
		return fault.ErrNotInitialised
	}

	value, err := json.Marshal(utxo)
	if nil != err {
		return err
	}

	k := prefixedKey(key)
	err = l.db.Put(k, value, nil)
	if nil != err {
		return err
	}
	l.cache.Set(string(k), utxo, defaultExpiration)
	l.log.Infof("put key: %s  utxo: %s", key, utxo.OutRef)
	return nil
}

// Keys - every stored entry key, in database order
func (l *LevelDB) Keys() ([]string, error) {
	l.RLock()
	defer l.RUnlock()

	if nil == l.db {
		return nil, fault.ErrNotInitialised
	}

	iter := l.db.NewIterator(ldb_util.BytesPrefix([]byte{entryPrefix}), nil)
	defer iter.Release()

	keys := make([]string, 0, 4)
	for iter.Next() {
		keys = append(keys, string(iter.Key()[1:]))
	}
	return keys, iter.Error()
}

// Close - release the database
func (l *LevelDB) Close() error {
	l.Lock()
	defer l.Unlock()

	if nil == l.db {
		return nil
	}
	l.cache.Flush()
	err := l.db.Close()
	l.db = nil
	return err
}
