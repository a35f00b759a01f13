package history

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/wricardo/radio-car-sim/game/simulation"
)

func result(id string) *simulation.Result {
	return &simulation.Result{ID: id, Success: true, Message: "done " + id}
}

func TestStore_AddAndGet(t *testing.T) {
	store := NewStore(10)
	store.Add(result("Run-A"))

	t.Run("exact id", func(t *testing.T) {
		got, err := store.Get("Run-A")
		if err != nil {
			t.Fatalf("Failed to get run: %v", err)
		}
		if got.Message != "done Run-A" {
			t.Errorf("Expected message 'done Run-A', got '%s'", got.Message)
		}
	})

	t.Run("case-insensitive id", func(t *testing.T) {
		if _, err := store.Get("run-a"); err != nil {
			t.Errorf("Expected case variant to be found, got %v", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := store.Get("missing")
		if !errors.Is(err, simulation.ErrRunNotFound) {
			t.Errorf("Expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("ignores results without id", func(t *testing.T) {
		store.Add(&simulation.Result{})
		store.Add(nil)
		if store.Count() != 1 {
			t.Errorf("Expected 1 run, got %d", store.Count())
		}
	})
}

func TestStore_ReplacesDuplicateID(t *testing.T) {
	store := NewStore(10)
	store.Add(result("a"))
	store.Add(result("b"))
	store.Add(&simulation.Result{ID: "A", Message: "again"})

	if store.Count() != 2 {
		t.Fatalf("Expected 2 runs, got %d", store.Count())
	}
	list := store.List()
	if list[0].Message != "again" {
		t.Errorf("Expected replaced run to be newest, got '%s'", list[0].Message)
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := NewStore(10)
	for _, id := range []string{"first", "second", "third"} {
		store.Add(result(id))
	}

	list := store.List()
	if len(list) != 3 {
		t.Fatalf("Expected 3 runs, got %d", len(list))
	}
	for i, want := range []string{"third", "second", "first"} {
		if list[i].ID != want {
			t.Errorf("Expected run %d to be '%s', got '%s'", i, want, list[i].ID)
		}
	}
}

func TestStore_EvictsOldest(t *testing.T) {
	store := NewStore(2)
	store.Add(result("one"))
	store.Add(result("two"))
	store.Add(result("three"))

	if store.Count() != 2 {
		t.Errorf("Expected 2 runs, got %d", store.Count())
	}
	if _, err := store.Get("one"); !errors.Is(err, simulation.ErrRunNotFound) {
		t.Errorf("Expected oldest run to be evicted, got %v", err)
	}
	if _, err := store.Get("three"); err != nil {
		t.Errorf("Expected newest run to be kept, got %v", err)
	}
}

func TestStore_DefaultLimit(t *testing.T) {
	store := NewStore(0)
	for i := 0; i < DefaultLimit+5; i++ {
		store.Add(result(fmt.Sprintf("run-%d", i)))
	}
	if store.Count() != DefaultLimit {
		t.Errorf("Expected %d runs, got %d", DefaultLimit, store.Count())
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(50)
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("run-%d", i)
			store.Add(result(id))
			if _, err := store.Get(id); err != nil {
				t.Errorf("Failed to get %s: %v", id, err)
			}
			store.List()
		}(i)
	}
	wg.Wait()

	if store.Count() != 20 {
		t.Errorf("Expected 20 runs, got %d", store.Count())
	}
}

func TestStore_ServesSimulationService(t *testing.T) {
	var _ simulation.RunHistory = NewStore(1)
}
