package cache

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/jhoicas/fuel-tracker/pkg/logger"
)

// BadgerCache caché persistente sobre BadgerDB con TTL nativo por entrada.
// Las claves vencidas devuelven ErrKeyNotFound y se tratan como miss.
type BadgerCache struct {
	db  *badger.DB
	log *logger.Logger
}

// OpenBadgerCache abre la base en dir; con dir vacío la abre en memoria (backend por defecto).
// Las entradas vencidas se descartan en las compactaciones, no solo al leerlas.
func OpenBadgerCache(dir string, log *logger.Logger) (*BadgerCache, error) {
	if log == nil {
		log = logger.Nop()
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true).WithMemTableSize(16 << 20)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &BadgerCache{db: db, log: log.Component("badger_cache")}, nil
}

func (c *BadgerCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if ctx.Err() != nil {
		return nil, false
	}
	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false
	}
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("lectura de caché fallida, se trata como miss")
		return nil, false
	}
	return raw, true
}

func (c *BadgerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ctx.Err() != nil {
		return
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("escritura de caché fallida")
	}
}

// Close cierra la base.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
