package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendAndDrainPreservesOrder(t *testing.T) {
	p := New[string]()
	p.Append("a")
	p.Append("b")
	p.Append("c")

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, []string{"a", "b", "c"}, p.DrainAll())
	assert.Equal(t, 0, p.Len())
}

func TestDrainAllOnEmptyReturnsNil(t *testing.T) {
	p := New[string]()
	assert.Nil(t, p.DrainAll())
}

func TestPushFrontKeepsRequeuedItemsAheadOfNewArrivals(t *testing.T) {
	p := New[string]()
	p.Append("new-1")
	p.Append("new-2")

	p.PushFront([]string{"requeued-1", "requeued-2"})

	assert.Equal(t, []string{"requeued-1", "requeued-2", "new-1", "new-2"}, p.DrainAll())
}

func TestPushFrontEmptyIsNoOp(t *testing.T) {
	p := New[string]()
	p.Append("a")
	p.PushFront(nil)
	assert.Equal(t, []string{"a"}, p.DrainAll())
}
