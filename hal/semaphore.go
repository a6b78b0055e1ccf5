package hal

import "github.com/gogpu/gputypes"

// Semaphore is an opaque GPU semaphore used to order submissions within a
// queue batch. Binary semantics: signaled by one submit, waited on by a
// later one, then reusable.
type Semaphore interface {
	Resource
}

// SemaphoreProvider is implemented by devices that can create standalone
// semaphores for cross-submit synchronization. Backends whose queues
// serialize submissions implicitly (GLES, software) need none and skip it.
type SemaphoreProvider interface {
	// CreateSemaphore creates an unsignaled binary semaphore.
	CreateSemaphore() (Semaphore, error)

	// DestroySemaphore destroys a semaphore. It must not be in use by any
	// pending submission.
	DestroySemaphore(sem Semaphore)
}

// SemaphoreWait is one wait-list entry for a submission: the semaphore to
// wait on and the usage the waiting work needs the guarded resources in.
// The backend lowers the usage to a pipeline-stage mask; a wait with no
// usage bits set waits at the backend's most conservative stage.
type SemaphoreWait struct {
	Semaphore    Semaphore
	BufferUsage  gputypes.BufferUsage
	TextureUsage gputypes.TextureUsage
}

// SemaphoreQueue is implemented by queues that accept explicit wait/signal
// semaphore lists on submission. Callers feature-detect with a type
// assertion and fall back to plain Submit when absent.
type SemaphoreQueue interface {
	// SubmitWithSemaphores submits command buffers that wait on every entry
	// in waits before executing and signal every semaphore in signals when
	// done. fence behaves as in Queue.Submit.
	SubmitWithSemaphores(commandBuffers []CommandBuffer, waits []SemaphoreWait, signals []Semaphore, fence Fence, fenceValue uint64) error
}
