package offload

import (
	"testing"
	"time"
)

func TestFuture_Get(t *testing.T) {
	t.Run("successful result", func(t *testing.T) {
		f := NewFuture[string]()

		go func() {
			time.Sleep(20 * time.Millisecond)
			f.Complete("success")
		}()

		value, err := f.Get()
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if value != "success" {
			t.Errorf("expected value 'success', got %v", value)
		}
	})

	t.Run("error result", func(t *testing.T) {
		f := NewFuture[string]()

		go func() {
			f.Fail(errDeliberate)
		}()

		value, err := f.Get()
		if err != errDeliberate {
			t.Errorf("expected error %v, got %v", errDeliberate, err)
		}
		if value != "" {
			t.Errorf("expected zero value, got %v", value)
		}
	})

	t.Run("single assignment wins", func(t *testing.T) {
		f := NewFuture[int]()
		f.Complete(1)
		f.Complete(2)
		f.Fail(errDeliberate)

		value, err := f.Get()
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if value != 1 {
			t.Errorf("first completion should win, got %d", value)
		}
	})
}

func TestFuture_Done(t *testing.T) {
	f := NewFuture[int]()

	select {
	case <-f.Done():
		t.Fatal("done channel closed before completion")
	default:
	}

	f.Complete(42)

	select {
	case <-f.Done():
	case <-time.After(time.Second):
		t.Fatal("done channel not closed after completion")
	}
}

func TestGo(t *testing.T) {
	t.Run("forwards the value", func(t *testing.T) {
		f := Go(func() (int, error) { return 7, nil })
		value, err := f.Get()
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if value != 7 {
			t.Errorf("expected 7, got %d", value)
		}
	})

	t.Run("forwards the error", func(t *testing.T) {
		f := Go(func() (int, error) { return 0, errDeliberate })
		if _, err := f.Get(); err != errDeliberate {
			t.Errorf("expected %v, got %v", errDeliberate, err)
		}
	})
}
