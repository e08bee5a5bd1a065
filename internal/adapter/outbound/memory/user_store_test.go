package memory

import (
	"context"
	"sync"
	"testing"
)

func TestUserStoreCreateAndGet(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	id, err := s.Create(ctx, "alice", "hash-a")
	if err != nil {
		t.Fatalf("Create() = %v", err)
	}
	if id != 1 {
		t.Fatalf("first ID = %d, want 1", id)
	}

	u, err := s.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID() = %v", err)
	}
	if u.Username != "alice" || u.PasswordHash != "hash-a" || !u.Active {
		t.Fatalf("user = %+v", u)
	}

	byName, err := s.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetByUsername() = %v", err)
	}
	if byName.ID != id {
		t.Fatalf("GetByUsername() ID = %d, want %d", byName.ID, id)
	}
}

func TestUserStoreAbsentIsNilNil(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	u, err := s.GetByID(ctx, 42)
	if u != nil || err != nil {
		t.Fatalf("GetByID() = %v, %v, want nil, nil", u, err)
	}
	u, err = s.GetByUsername(ctx, "ghost")
	if u != nil || err != nil {
		t.Fatalf("GetByUsername() = %v, %v, want nil, nil", u, err)
	}
	u, err = s.Update(ctx, 42, "ghost", "h")
	if u != nil || err != nil {
		t.Fatalf("Update() = %v, %v, want nil, nil", u, err)
	}
}

func TestUserStoreCopyOut(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	id, _ := s.Create(ctx, "alice", "hash-a")
	u, _ := s.GetByID(ctx, id)
	u.Username = "mallory"

	again, _ := s.GetByID(ctx, id)
	if again.Username != "alice" {
		t.Fatal("mutation of returned copy leaked into store")
	}
}

func TestUserStoreListOrder(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	s.Create(ctx, "a", "h")
	s.Create(ctx, "b", "h")
	s.Create(ctx, "c", "h")
	s.Delete(ctx, 2)

	users, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() = %v", err)
	}
	if len(users) != 2 || users[0].Username != "a" || users[1].Username != "c" {
		t.Fatalf("List() = %+v", users)
	}
}

func TestUserStoreConcurrentAccess(t *testing.T) {
	s := NewUserStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Create(ctx, "user", "hash"); err != nil {
				t.Errorf("Create() = %v", err)
			}
			if _, err := s.List(ctx); err != nil {
				t.Errorf("List() = %v", err)
			}
		}()
	}
	wg.Wait()

	users, _ := s.List(ctx)
	if len(users) != 20 {
		t.Fatalf("List() len = %d, want 20", len(users))
	}
}
