package storage

import (
	"time"

	"github.com/eko/gocache/store"
	gocache "github.com/patrickmn/go-cache"

	log "github.com/sirupsen/logrus"
)

var settingsCache = store.NewGoCache(gocache.New(5*time.Minute, 10*time.Minute), nil)

type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

type Option func(b *Base)

func ID(id string) Option {
	return func(b *Base) {
		b.ID = id
	}
}

func New(opts ...Option) *Base {
	b := &Base{
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b Base) Key() string {
	return b.ID
}

func (b *Base) Get(s Storable, db *DB) (Storable, error) {
	cached, err := settingsCache.Get(s.Key())
	if err != nil {
		err := db.Get(s)
		if err != nil {
			return s, err
		}
		log.Tracef("[Bunt] get object %s", s.Key())
		return s, settingsCache.Set(s.Key(), s, &store.Options{Expiration: 5 * time.Minute})
	}
	log.Tracef("[Bunt Cache] get object %s", s.Key())
	return cached.(Storable), err
}

func (b *Base) Set(s Storable, db *DB) error {
	b.UpdatedAt = time.Now()
	err := db.Set(s)
	if err != nil {
		log.Errorf("[Bunt] could not set object: %v", err)
		return err
	}
	log.Tracef("[Bunt] set object %s", s.Key())
	err = settingsCache.Set(s.Key(), s, &store.Options{Expiration: 5 * time.Minute})
	if err != nil {
		log.Errorf("[Bunt Cache] could not set object: %v", err)
	}
	return err
}

func (b *Base) Delete(s Storable, db *DB) error {
	b.UpdatedAt = time.Now()
	if err := settingsCache.Delete(s.Key()); err != nil {
		log.Tracef("[Bunt Cache] could not delete object %s: %v", s.Key(), err)
	}
	return db.Delete(s.Key(), s)
}
