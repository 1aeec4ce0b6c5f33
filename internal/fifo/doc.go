// Package fifo provides the unbounded FIFO queues that connect the UI
// and the speech worker. Enqueueing never blocks; consumers choose between
// a blocking dequeue and a non-blocking poll.
package fifo
