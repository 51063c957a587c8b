package studio

import (
	"testing"
	"time"
)

func TestRegistryCreateAndGet(t *testing.T) {
	reg := NewRegistry(time.Minute, Backends{}, nil)

	created := reg.Create()
	if created.ID == "" {
		t.Fatal("expected a session id")
	}
	got, ok := reg.Get(created.ID)
	if !ok || got != created {
		t.Fatalf("Get returned %v %v", got, ok)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 live session, got %d", reg.Len())
	}
}

func TestRegistryDelete(t *testing.T) {
	reg := NewRegistry(time.Minute, Backends{}, nil)

	created := reg.Create()
	reg.Delete(created.ID)
	if _, ok := reg.Get(created.ID); ok {
		t.Fatal("expected deleted session to be gone")
	}
}

func TestRegistryExpiresIdleSessions(t *testing.T) {
	reg := NewRegistry(20*time.Millisecond, Backends{}, nil)

	created := reg.Create()
	time.Sleep(60 * time.Millisecond)
	if _, ok := reg.Get(created.ID); ok {
		t.Fatal("expected idle session to expire")
	}
}

func TestRegistryGetSlidesExpiry(t *testing.T) {
	reg := NewRegistry(50*time.Millisecond, Backends{}, nil)

	created := reg.Create()
	for i := 0; i < 4; i++ {
		time.Sleep(25 * time.Millisecond)
		if _, ok := reg.Get(created.ID); !ok {
			t.Fatalf("session expired despite activity on touch %d", i)
		}
	}
}

func TestRegistryGetUnknownID(t *testing.T) {
	reg := NewRegistry(time.Minute, Backends{}, nil)
	if _, ok := reg.Get("not-a-session"); ok {
		t.Fatal("expected unknown id to miss")
	}
}
