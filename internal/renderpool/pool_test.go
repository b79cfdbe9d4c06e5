package renderpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdlePool(workers ...*Worker) *Pool {
	return &Pool{idle: append([]*Worker{}, workers...), all: append([]*Worker{}, workers...)}
}

func TestPoolAcquireReturnsMostRecentlyReleasedWorker(t *testing.T) {
	a, b, c := &Worker{}, &Worker{}, &Worker{}
	p := newIdlePool(a, b, c)

	got, err := p.Acquire()
	require.NoError(t, err)
	assert.Same(t, c, got)

	p.Release(got)
	got2, err := p.Acquire()
	require.NoError(t, err)
	assert.Same(t, c, got2)
}

func TestPoolAcquireOnEmptyPoolFails(t *testing.T) {
	p := newIdlePool()
	_, err := p.Acquire()
	assert.Error(t, err)
}

func TestPoolAcquireDrainsThenFails(t *testing.T) {
	a, b := &Worker{}, &Worker{}
	p := newIdlePool(a, b)

	_, err := p.Acquire()
	require.NoError(t, err)
	_, err = p.Acquire()
	require.NoError(t, err)

	_, err = p.Acquire()
	assert.Error(t, err)
}

func TestPoolAcquireAfterClosingFails(t *testing.T) {
	p := newIdlePool(&Worker{})
	p.closing = true

	_, err := p.Acquire()
	assert.Error(t, err)
}

func TestPoolReleasePutsWorkerBackOnTop(t *testing.T) {
	a, b := &Worker{}, &Worker{}
	p := newIdlePool(a)

	p.Release(b)
	got, err := p.Acquire()
	require.NoError(t, err)
	assert.Same(t, b, got)
}
