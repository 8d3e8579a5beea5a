package cache

import (
	"log/slog"
	"time"

	"rentledger/internal/log"
)

// Cache is a keyed store of computed ledger views.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	// DeletePrefix drops every key starting with prefix and returns how many
	// entries were removed.
	DeletePrefix(prefix string) int
	Size() int
}

// Cleaner is implemented by caches whose entries expire.
type Cleaner interface {
	CleanExpired() int
}

// Janitor periodically sweeps expired entries from registered caches.
type Janitor struct {
	caches []Cleaner
	stop   chan struct{}
	done   chan struct{}
}

func NewJanitor(caches ...Cleaner) *Janitor {
	return &Janitor{
		caches: caches,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start runs the sweep every interval until Stop is called.
func (j *Janitor) Start(interval time.Duration) {
	go j.run(interval)
}

func (j *Janitor) run(interval time.Duration) {
	defer close(j.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := j.Sweep(); n > 0 {
				slog.Debug("Swept expired cache entries", log.FieldComponent, log.ComponentCache, "removed", n)
			}
		case <-j.stop:
			return
		}
	}
}

// Sweep cleans all caches once.
func (j *Janitor) Sweep() int {
	total := 0
	for _, c := range j.caches {
		total += c.CleanExpired()
	}
	return total
}

func (j *Janitor) Stop() {
	close(j.stop)
	<-j.done
}
