package fifo

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestQueue_BasicOperations(t *testing.T) {
	q := New[string]()
	defer q.Close()

	if n := q.Len(); n != 0 {
		t.Errorf("Expected empty queue, got length %d", n)
	}

	if _, ok := q.TryDequeue(); ok {
		t.Error("TryDequeue on empty queue should report no item")
	}

	if err := q.Enqueue("hello"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	if n := q.Len(); n != 1 {
		t.Errorf("Expected length 1, got %d", n)
	}

	item, err := q.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue failed: %v", err)
	}
	if item != "hello" {
		t.Errorf("Dequeued wrong item: %q", item)
	}
	if n := q.Len(); n != 0 {
		t.Errorf("Expected empty queue after dequeue, got length %d", n)
	}
}

func TestQueue_FIFOOrder(t *testing.T) {
	q := New[int]()
	defer q.Close()

	for i := 0; i < 100; i++ {
		if err := q.Enqueue(i); err != nil {
			t.Fatalf("Enqueue %d failed: %v", i, err)
		}
	}

	for i := 0; i < 100; i++ {
		item, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue %d failed: %v", i, err)
		}
		if item != i {
			t.Fatalf("Expected item %d, got %d", i, item)
		}
	}
}

func TestQueue_BlockingDequeue(t *testing.T) {
	q := New[string]()
	defer q.Close()

	got := make(chan string, 1)
	go func() {
		item, err := q.Dequeue()
		if err != nil {
			got <- fmt.Sprintf("error: %v", err)
			return
		}
		got <- item
	}()

	// Give the consumer time to block before producing.
	time.Sleep(20 * time.Millisecond)

	if err := q.Enqueue("wake"); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	select {
	case item := <-got:
		if item != "wake" {
			t.Errorf("Blocked consumer received %q", item)
		}
	case <-time.After(time.Second):
		t.Fatal("Blocked consumer never woke up")
	}
}

func TestQueue_Drain(t *testing.T) {
	q := New[int]()
	defer q.Close()

	if items := q.Drain(); items != nil {
		t.Errorf("Drain of empty queue should return nil, got %v", items)
	}

	for i := 0; i < 5; i++ {
		if err := q.Enqueue(i); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	items := q.Drain()
	if len(items) != 5 {
		t.Fatalf("Expected 5 drained items, got %d", len(items))
	}
	for i, item := range items {
		if item != i {
			t.Errorf("Drained item %d out of order: got %d", i, item)
		}
	}

	if n := q.Len(); n != 0 {
		t.Errorf("Queue should be empty after drain, got length %d", n)
	}
}

func TestQueue_CloseSemantics(t *testing.T) {
	q := New[int]()

	if err := q.Enqueue(1); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	q.Close()

	if !q.Closed() {
		t.Error("Closed should report true after Close")
	}

	// Enqueue after close fails.
	if err := q.Enqueue(2); err != ErrClosed {
		t.Errorf("Expected ErrClosed from Enqueue after close, got %v", err)
	}

	// Items queued before close remain dequeueable.
	item, err := q.Dequeue()
	if err != nil {
		t.Fatalf("Dequeue of item queued before close failed: %v", err)
	}
	if item != 1 {
		t.Errorf("Expected item 1, got %d", item)
	}

	// Drained and closed: ErrClosed.
	if _, err := q.Dequeue(); err != ErrClosed {
		t.Errorf("Expected ErrClosed from Dequeue on drained closed queue, got %v", err)
	}

	// Close is idempotent.
	q.Close()
}

func TestQueue_CloseWakesBlockedConsumers(t *testing.T) {
	q := New[int]()

	const consumers = 4
	var wg sync.WaitGroup
	errs := make(chan error, consumers)

	for i := 0; i < consumers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := q.Dequeue()
			errs <- err
		}()
	}

	// Let the consumers block, then close.
	time.Sleep(20 * time.Millisecond)
	q.Close()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close did not wake blocked consumers")
	}

	for i := 0; i < consumers; i++ {
		if err := <-errs; err != ErrClosed {
			t.Errorf("Expected ErrClosed from woken consumer, got %v", err)
		}
	}
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := New[int]()
	defer q.Close()

	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := q.Enqueue(p*perProducer + i); err != nil {
					t.Errorf("Enqueue failed: %v", err)
					return
				}
			}
		}(p)
	}
	wg.Wait()

	seen := make(map[int]bool)
	for i := 0; i < producers*perProducer; i++ {
		item, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue failed: %v", err)
		}
		if seen[item] {
			t.Fatalf("Item %d delivered twice", item)
		}
		seen[item] = true
	}

	if n := q.Len(); n != 0 {
		t.Errorf("Expected empty queue, got length %d", n)
	}
}
