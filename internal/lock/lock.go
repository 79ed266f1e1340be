// Package lock сериализует запись слотов одного провайдера.
package lock

import (
	"context"
	"errors"
	"strconv"
	"sync"
)

var ErrNotAcquired = errors.New("lock not acquired")

// Locker захватывает именованную блокировку, unlock освобождает её
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// ProviderKey ключ блокировки записи слотов провайдера
func ProviderKey(providerID int64) string {
	return "provider:" + strconv.FormatInt(providerID, 10)
}

// KeyedMutex блокировки внутри одного процесса
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*entry)}
}

func (k *KeyedMutex) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			k.release(key, e)
		})
	}, nil
}

func (k *KeyedMutex) release(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
}
