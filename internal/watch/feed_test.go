package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_LatestBeforePublish(t *testing.T) {
	f := NewFeed[int]()
	_, ok := f.Latest()
	assert.False(t, ok)
}

func TestFeed_SubscribeReceivesCurrentAndNewer(t *testing.T) {
	f := NewFeed[int]()
	f.Publish(1)

	ch, cancel := f.Subscribe()
	defer cancel()

	assert.Equal(t, 1, <-ch, "current snapshot delivered on subscribe")

	f.Publish(2)
	assert.Equal(t, 2, <-ch)

	v, ok := f.Latest()
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestFeed_SlowListenerSeesNewestOnly(t *testing.T) {
	f := NewFeed[int]()
	ch, cancel := f.Subscribe()
	defer cancel()

	// Three publishes with nobody reading: the stale values are replaced.
	f.Publish(1)
	f.Publish(2)
	f.Publish(3)

	assert.Equal(t, 3, <-ch)
	select {
	case v := <-ch:
		t.Fatalf("unexpected extra snapshot %d", v)
	default:
	}
}

func TestFeed_CancelStopsDelivery(t *testing.T) {
	f := NewFeed[int]()
	ch, cancel := f.Subscribe()
	cancel()

	f.Publish(1)
	select {
	case <-ch:
		t.Fatal("cancelled subscriber still notified")
	default:
	}
}
