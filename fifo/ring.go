package fifo

import "github.com/andresovela/fifoarena"

// ringCursor tracks the producer and consumer ends of one circular buffer using the
// capacity-plus-one convention: the backing region holds one more slot than the usable
// capacity, head == tail means empty, and one slot always stays unused so a full ring
// can never be mistaken for an empty one.
type ringCursor struct {
	head    int
	tail    int
	ringLen int
}

func (c *ringCursor) utilization() int {
	// No wrap-around
	if c.head >= c.tail {
		return c.head - c.tail
	}
	// The head has wrapped around the buffer
	return c.ringLen + c.head - c.tail
}

func (c *ringCursor) spaceAvailable() int {
	return c.ringLen - c.utilization() - 1
}

func (c *ringCursor) isEmpty() bool {
	return c.head == c.tail
}

func (c *ringCursor) advanceHead(delta int) {
	c.head = fifoarena.NextRingIndex(c.head, delta, c.ringLen)
}

func (c *ringCursor) advanceTail(delta int) {
	c.tail = fifoarena.NextRingIndex(c.tail, delta, c.ringLen)
}

func (c *ringCursor) reset() {
	c.head = 0
	c.tail = 0
}
