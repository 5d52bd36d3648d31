package panel

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowMoreShowLess(t *testing.T) {
	l := New[int](2)
	tk := l.Begin()
	require.True(t, l.Commit(tk, []int{1, 2, 3, 4, 5}, nil))

	assert.Equal(t, []int{1, 2}, l.Visible())
	l.Toggle()
	assert.Equal(t, []int{1, 2, 3, 4, 5}, l.Visible())
	l.Toggle()
	assert.Equal(t, []int{1, 2}, l.Visible())
}

func TestToggleIgnoredForShortLists(t *testing.T) {
	l := New[string](2)
	l.Commit(l.Begin(), []string{"a", "b"}, nil)
	l.Toggle()

	v := l.Snapshot()
	assert.False(t, v.Expanded)
	assert.False(t, v.CanToggle)
	assert.Equal(t, []string{"a", "b"}, v.Items)
}

func TestResetClearsAndDropsInFlight(t *testing.T) {
	l := New[int](2)
	l.Commit(l.Begin(), []int{1, 2, 3}, nil)
	l.Toggle()

	inflight := l.Begin()
	l.Reset()

	assert.Empty(t, l.Visible())
	assert.Equal(t, 0, l.Len())
	assert.False(t, l.Loading())

	// the fetch that was running when reset fired resolves afterwards
	assert.False(t, l.Commit(inflight, []int{9, 9, 9}, nil))
	assert.Empty(t, l.All())

	v := l.Snapshot()
	assert.False(t, v.Expanded)
	assert.False(t, v.Loaded)
}

func TestLaterFetchWins(t *testing.T) {
	l := New[int](2)
	first := l.Begin()
	second := l.Begin()

	assert.True(t, l.Commit(second, []int{2}, nil))
	assert.False(t, l.Commit(first, []int{1}, nil))
	assert.Equal(t, []int{2}, l.All())
}

func TestErrorKeepsItems(t *testing.T) {
	l := New[int](2)
	l.Commit(l.Begin(), []int{1}, nil)

	boom := errors.New("boom")
	assert.True(t, l.Commit(l.Begin(), nil, boom))
	assert.ErrorIs(t, l.Err(), boom)
	assert.Equal(t, []int{1}, l.All())

	// next successful fetch clears the error
	l.Commit(l.Begin(), []int{1, 2}, nil)
	assert.NoError(t, l.Err())
}

func TestFailInvalidatesFetch(t *testing.T) {
	l := New[int](2)
	tk := l.Begin()
	l.Fail(errors.New("missing api key"))

	assert.False(t, l.Commit(tk, []int{1}, nil))
	assert.EqualError(t, l.Err(), "missing api key")
	assert.False(t, l.Loading())
}

func TestVisibleIsACopy(t *testing.T) {
	l := New[int](5)
	l.Commit(l.Begin(), []int{1, 2}, nil)
	v := l.Visible()
	v[0] = 42
	assert.Equal(t, []int{1, 2}, l.All())
}

func TestConcurrentUse(t *testing.T) {
	l := New[int](2)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tk := l.Begin()
			if i%5 == 0 {
				l.Reset()
			}
			l.Commit(tk, []int{i}, nil)
			l.Toggle()
			_ = l.Snapshot()
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, l.Len(), 1)
}
