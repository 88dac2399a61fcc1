package domain

// SlotState is the lifecycle state of a pipeline's result slot.
type SlotState string

// Slot states.
const (
	// SlotIdle means nothing has been requested for the current term.
	SlotIdle SlotState = "idle"

	// SlotLoading means a request for the current term is in flight.
	SlotLoading SlotState = "loading"

	// SlotReady means Value holds the result for the current term.
	SlotReady SlotState = "ready"

	// SlotFailed means the request for the current term failed with Err.
	SlotFailed SlotState = "failed"
)

// String returns the string representation.
func (s SlotState) String() string {
	return string(s)
}

// Slot is the single current result state owned by one pipeline.
// Value is only meaningful when State is SlotReady, Err only when
// State is SlotFailed.
type Slot[T any] struct {
	State SlotState
	Value T
	Err   error
}

// IdleSlot returns an idle slot.
func IdleSlot[T any]() Slot[T] {
	return Slot[T]{State: SlotIdle}
}

// LoadingSlot returns a loading slot.
func LoadingSlot[T any]() Slot[T] {
	return Slot[T]{State: SlotLoading}
}

// ReadySlot returns a slot holding value.
func ReadySlot[T any](value T) Slot[T] {
	return Slot[T]{State: SlotReady, Value: value}
}

// FailedSlot returns a slot holding err.
func FailedSlot[T any](err error) Slot[T] {
	return Slot[T]{State: SlotFailed, Err: err}
}

// IsIdle reports whether the slot is idle.
func (s Slot[T]) IsIdle() bool { return s.State == SlotIdle || s.State == "" }

// IsLoading reports whether the slot is loading.
func (s Slot[T]) IsLoading() bool { return s.State == SlotLoading }

// IsReady reports whether the slot holds a value.
func (s Slot[T]) IsReady() bool { return s.State == SlotReady }

// IsFailed reports whether the slot holds an error.
func (s Slot[T]) IsFailed() bool { return s.State == SlotFailed }
