package stub

import (
	"sync"
	"sync/atomic"
	"testing"

	"pgregory.net/rapid"

	"github.com/vinipx/quantaf/internal/message"
)

// Property: for any number of response generators and any number of
// concurrent invocations, the combined call count equals the number of
// invocations, and every observed generator index is within [0, len-1] and
// non-decreasing once sorted — i.e. no index is skipped or reused outside
// the sticky-last rule.
func TestProperty_GenerateResponseIndexAdvancesAtomically(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numGenerators := rapid.IntRange(1, 6).Draw(t, "numGenerators")
		numCalls := rapid.IntRange(1, 100).Draw(t, "numCalls")

		var indices []int64
		var mu sync.Mutex

		builder := New(nil).When(func(*message.Message) bool { return true })
		for i := 0; i < numGenerators; i++ {
			idx := int64(i)
			builder = builder.RespondWith(func(*message.Message) *message.Message {
				mu.Lock()
				indices = append(indices, idx)
				mu.Unlock()
				r := message.New()
				r.SetInt(message.TagOrderQty, idx)
				return r
			})
		}
		rule, err := builder.Register()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var wg sync.WaitGroup
		var calls atomic.Int64
		for i := 0; i < numCalls; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rule.GenerateResponse(message.New())
				calls.Add(1)
			}()
		}
		wg.Wait()

		if rule.CallCount() != int64(numCalls) {
			t.Fatalf("CallCount() = %d, want %d", rule.CallCount(), numCalls)
		}
		if calls.Load() != int64(numCalls) {
			t.Fatalf("observed %d calls, want %d", calls.Load(), numCalls)
		}

		last := int64(numGenerators - 1)
		sawLast := 0
		for _, idx := range indices {
			if idx < 0 || idx > last {
				t.Fatalf("generator index %d out of range [0, %d]", idx, last)
			}
			if idx == last {
				sawLast++
			}
		}
		if int64(numCalls) > last && sawLast == 0 {
			t.Fatalf("expected the last generator to be used at least once for %d calls over %d generators", numCalls, numGenerators)
		}

		counts := make(map[int64]int64)
		for _, idx := range indices {
			counts[idx]++
		}
		for idx := int64(0); idx <= last; idx++ {
			var want int64
			switch {
			case idx < last && idx < int64(numCalls):
				want = 1
			case idx == last && int64(numCalls) > last:
				want = int64(numCalls) - last
			}
			if counts[idx] != want {
				t.Fatalf("generator %d used %d times, want %d (%d calls over %d generators)", idx, counts[idx], want, numCalls, numGenerators)
			}
		}
	})
}

// Property: FindMatch never panics and never skips a later rule because an
// earlier predicate panicked.
func TestProperty_FindMatchSurvivesPanickingPredicates(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		numPanicking := rapid.IntRange(0, 5).Draw(t, "numPanicking")

		reg := New(nil)
		for i := 0; i < numPanicking; i++ {
			_, _ = reg.When(func(*message.Message) bool { panic("always panics") }).
				RespondWith(func(*message.Message) *message.Message { return message.New() }).
				Register()
		}
		_, _ = reg.When(func(*message.Message) bool { return true }).
			RespondWith(func(*message.Message) *message.Message { return message.New() }).
			DescribedAs("fallback").
			Register()

		rule := reg.FindMatch(message.New())
		if rule == nil {
			t.Fatal("expected the trailing fallback rule to match")
		}
		if rule.Label() != "fallback" {
			t.Fatalf("expected fallback to match, got %q", rule.Label())
		}
	})
}
