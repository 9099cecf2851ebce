package querycache

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	friendlyerrors "github.com/wumbolauncher/wumbo/internal/errors"
)

func row(title string) Row { return Row{Title: title, ID: "id-" + title} }

func fill(t *testing.T, c *Cache, titles ...string) uint64 {
	t.Helper()
	gen := c.Reset()
	for _, title := range titles {
		if _, ok := c.Append(gen, row(title)); !ok {
			t.Fatalf("Append(%q) rejected", title)
		}
	}
	return gen
}

func TestAppendAssignsDensePositions(t *testing.T) {
	c := New()
	gen := c.Reset()
	for i := 0; i < 10; i++ {
		pos, ok := c.Append(gen, Row{Title: fmt.Sprint(i), Position: 99})
		if !ok || pos != i {
			t.Fatalf("Append #%d = (%d, %v)", i, pos, ok)
		}
	}
	for i, r := range c.Snapshot() {
		if r.Position != i {
			t.Errorf("row %d has position %d", i, r.Position)
		}
	}
}

func TestStaleGenerationIsDiscarded(t *testing.T) {
	c := New()
	old := c.Reset()
	c.Append(old, row("a"))
	cur := c.Reset()
	if c.Size() != 0 {
		t.Fatalf("Reset left %d rows", c.Size())
	}
	if _, ok := c.Append(old, row("stale")); ok {
		t.Fatalf("stale append accepted")
	}
	if c.Finish(old, nil) {
		t.Fatalf("stale finish accepted")
	}
	c.Append(cur, row("fresh"))
	if r, _ := c.Get(0); r.Title != "fresh" || c.Size() != 1 {
		t.Fatalf("cache = %+v", c.Snapshot())
	}
}

func TestFinishWithErrorEmptiesCache(t *testing.T) {
	c := New()
	gen := fill(t, c, "a", "b")
	boom := errors.New("boom")
	c.Finish(gen, boom)
	if c.Size() != 0 || !c.Complete() || !errors.Is(c.Err(), boom) {
		t.Fatalf("size=%d complete=%v err=%v", c.Size(), c.Complete(), c.Err())
	}
}

func TestAppendAfterFinishIsRejected(t *testing.T) {
	c := New()
	gen := fill(t, c, "a")
	c.Finish(gen, nil)
	if _, ok := c.Append(gen, row("late")); ok {
		t.Fatalf("append after finish accepted")
	}
}

func TestChangedIsClosedOnEveryChange(t *testing.T) {
	c := New()
	ch := c.Changed()
	gen := c.Reset()
	select {
	case <-ch:
	default:
		t.Fatalf("Reset did not signal")
	}
	ch = c.Changed()
	c.Append(gen, row("a"))
	select {
	case <-ch:
	default:
		t.Fatalf("Append did not signal")
	}
	ch = c.Changed()
	c.Finish(gen, nil)
	select {
	case <-ch:
	default:
		t.Fatalf("Finish did not signal")
	}
}

func TestReorderRefusedWhileLoading(t *testing.T) {
	c := New()
	fill(t, c, "b", "a")
	err := c.Reorder(Comparator(ByTitle, Ascending))
	if !errors.Is(err, friendlyerrors.ErrCallerMisuse) {
		t.Fatalf("Reorder() error = %v, want ErrCallerMisuse", err)
	}
	if r, _ := c.Get(0); r.Title != "b" {
		t.Fatalf("refused reorder changed the order")
	}
}

func TestConcurrentAppendAndRead(t *testing.T) {
	c := New()
	gen := c.Reset()
	const n = 5000

	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !c.Complete() {
				size := c.Size()
				for _, pos := range []int{0, size / 2, size - 1} {
					if pos < 0 {
						continue
					}
					got, ok := c.Get(pos)
					if !ok {
						t.Errorf("Get(%d) missing with size %d", pos, size)
						return
					}
					if got.Position != pos {
						t.Errorf("Get(%d) has position %d", pos, got.Position)
						return
					}
				}
			}
		}()
	}
	for i := 0; i < n; i++ {
		c.Append(gen, Row{Title: fmt.Sprintf("%05d", i)})
	}
	c.Finish(gen, nil)
	wg.Wait()

	want := make([]int, n)
	got := make([]int, n)
	for i, r := range c.Snapshot() {
		want[i] = i
		got[i] = r.Position
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("positions not dense (-want +got):\n%s", diff)
	}
}
