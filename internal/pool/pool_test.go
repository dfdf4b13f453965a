package pool

import "testing"

func TestRentReturnsRequestedLength(t *testing.T) {
	for _, n := range []int{1, 255, 256, 257, 4096, 65537} {
		b := Rent(n)
		if len(b.Bytes()) != n {
			t.Errorf("Rent(%d) has length %d", n, len(b.Bytes()))
		}
		if cap(b.Bytes()) < n {
			t.Errorf("Rent(%d) has capacity %d", n, cap(b.Bytes()))
		}
		b.Release()
	}
}

func TestRentZero(t *testing.T) {
	b := Rent(0)
	if len(b.Bytes()) != 0 {
		t.Errorf("expected empty buffer, got %d bytes", len(b.Bytes()))
	}
	b.Release()
}

func TestReleaseIdempotent(t *testing.T) {
	b := Rent(128)
	b.Release()
	b.Release()
}

func TestOversizedRequestBypassesPool(t *testing.T) {
	n := (1 << 20) + 1
	b := Rent(n)
	if len(b.Bytes()) != n {
		t.Fatalf("got %d bytes", len(b.Bytes()))
	}
	b.Release()
}

func TestRentAfterRelease(t *testing.T) {
	b := Rent(300)
	buf := b.Bytes()
	copy(buf, "sentinel")
	b.Release()

	// The pool does not clear contents; only the length is reset. A
	// re-rented buffer must still have the requested length.
	c := Rent(300)
	defer c.Release()
	if len(c.Bytes()) != 300 {
		t.Errorf("got %d bytes", len(c.Bytes()))
	}
}

func TestConcurrentRentRelease(t *testing.T) {
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 1000; j++ {
				b := Rent(512)
				b.Bytes()[0] = byte(j)
				b.Release()
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
