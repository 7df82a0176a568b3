package common

import "fmt"

// NewRing creates a Ring which holds at most capacity values.
func NewRing[T any](capacity uint32) *Ring[T] {
	if capacity == 0 {
		panic(fmt.Errorf("ring capacity must be at least 1"))
	}
	return &Ring[T]{
		values:   make([]T, capacity),
		capacity: int(capacity),
	}
}

// Ring is a fixed-capacity FIFO. If it is full, Enqueue overwrites the
// oldest value. It is not safe for concurrent use.
type Ring[T any] struct {
	offset   int
	length   int
	values   []T
	capacity int
}

// Enqueue appends v. If the ring was full the oldest value is dropped and
// returned together with true.
func (this *Ring[T]) Enqueue(v T) (dropped T, overwritten bool) {
	if this.length >= this.capacity {
		dropped, overwritten = this.values[this.offset], true
		this.values[this.offset] = v
		this.offset++
		if this.offset >= this.capacity {
			this.offset = 0
		}
		return dropped, overwritten
	}

	i := this.offset + this.length
	if i >= this.capacity {
		i -= this.capacity
	}
	this.values[i] = v
	this.length++
	return dropped, false
}

// Dequeue removes and returns the oldest value.
func (this *Ring[T]) Dequeue() (v T, ok bool) {
	if this.length == 0 {
		return v, false
	}
	var zero T
	v = this.values[this.offset]
	this.values[this.offset] = zero
	this.offset++
	if this.offset >= this.capacity {
		this.offset = 0
	}
	this.length--
	return v, true
}

func (this *Ring[T]) Len() int {
	return this.length
}

func (this *Ring[T]) Capacity() int {
	return this.capacity
}

func (this *Ring[T]) IsZero() bool {
	return this.length == 0
}

func (this *Ring[T]) Reset() {
	var zero T
	for i := range this.values {
		this.values[i] = zero
	}
	this.offset = 0
	this.length = 0
}

// Values returns a copy of the content, oldest first.
func (this *Ring[T]) Values() []T {
	result := make([]T, this.length)
	for i := range result {
		j := this.offset + i
		if j >= this.capacity {
			j -= this.capacity
		}
		result[i] = this.values[j]
	}
	return result
}
