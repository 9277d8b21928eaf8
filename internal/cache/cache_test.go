package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/samply/prism/internal/clock"
	"github.com/samply/prism/internal/stratum"
)

func TestGetFreshMissOnEmptyCache(t *testing.T) {
	c := New(24*time.Hour, clock.NewFake(time.Now()))
	_, ok := c.GetFresh("berlin")
	assert.False(t, ok)
}

func TestPutThenGetFreshHits(t *testing.T) {
	c := New(24*time.Hour, clock.NewFake(time.Now()))
	v := stratum.Stratifiers{"gender": stratum.Counts{"male": 1}}
	c.Put("berlin", v)

	got, ok := c.GetFresh("berlin")
	assert.True(t, ok)
	assert.Equal(t, v, got)
}

func TestEntryExpiresAfterTTLButIsNotDeleted(t *testing.T) {
	fake := clock.NewFake(time.Now())
	c := New(time.Hour, fake)
	c.Put("berlin", stratum.Stratifiers{"gender": stratum.Counts{"male": 1}})

	fake.Advance(time.Hour + time.Second)

	_, ok := c.GetFresh("berlin")
	assert.False(t, ok)

	// The expired read reported the entry absent but left it stored.
	_, stored := c.entries["berlin"]
	assert.True(t, stored)

	// A re-Put replaces it with a fresh entry.
	c.Put("berlin", stratum.Stratifiers{"gender": stratum.Counts{"male": 2}})
	got, ok := c.GetFresh("berlin")
	assert.True(t, ok)
	assert.Equal(t, stratum.Counts{"male": 2}, got["gender"])
}

func TestPutOverwritesExistingEntry(t *testing.T) {
	fake := clock.NewFake(time.Now())
	c := New(24*time.Hour, fake)
	c.Put("berlin", stratum.Stratifiers{"gender": stratum.Counts{"male": 1}})
	fake.Advance(time.Minute)
	c.Put("berlin", stratum.Stratifiers{"gender": stratum.Counts{"male": 2}})

	got, ok := c.GetFresh("berlin")
	assert.True(t, ok)
	assert.Equal(t, stratum.Counts{"male": 2}, got["gender"])
}

func TestConcurrentReadsAndWritesDoNotRace(t *testing.T) {
	c := New(24*time.Hour, clock.NewFake(time.Now()))
	done := make(chan struct{})

	go func() {
		for i := 0; i < 1000; i++ {
			c.Put("berlin", stratum.Stratifiers{"gender": stratum.Counts{"male": uint64(i)}})
		}
		close(done)
	}()

	for i := 0; i < 1000; i++ {
		c.GetFresh("munich")
	}
	<-done
}
