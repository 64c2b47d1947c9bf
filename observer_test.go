package livetable

import "testing"

func TestObserver(t *testing.T) {
	t.Run("Execute", func(t *testing.T) {
		t.Run("returns and remembers the result", func(t *testing.T) {
			table := setupTable(t)
			table.Replace([]*testRow{{ID: 1}, {ID: 2}, {ID: 3}})
			o := Bind(table, func() {})
			got := o.Execute(Many(func(r *testRow) bool { return r.ID > 1 }, nil, 0, 0))
			if len(got) != 2 {
				t.Fatalf("Execute returned %d rows, want 2", len(got))
			}
		})

		t.Run("replaces the query used by notifications", func(t *testing.T) {
			table := setupTable(t)
			table.Replace([]*testRow{{ID: 1, Name: "a"}})
			calls := 0
			o := Bind(table, func() { calls++ })
			// Query only sees id 2: currently empty.
			o.Execute(Many(func(r *testRow) bool { return r.ID == 2 }, nil, 0, 0))
			o.Subscribe()

			// Mutation invisible to the query: id 1 renamed.
			table.Replace([]*testRow{{ID: 1, Name: "b"}})
			if calls != 0 {
				t.Fatalf("calls = %d, want 0 for an invisible mutation", calls)
			}

			// Narrow the query to id 1 without resubscribing.
			o.Execute(Many(func(r *testRow) bool { return r.ID == 1 }, nil, 0, 0))
			table.Replace([]*testRow{{ID: 4, Name: "b"}})
			if calls != 1 {
				t.Errorf("calls = %d, want 1 after the replaced query diverged", calls)
			}
		})
	})

	t.Run("notify", func(t *testing.T) {
		t.Run("suppression under field equality", func(t *testing.T) {
			table := setupTable(t)
			calls := 0
			o := Bind(table, func() { calls++ })
			table.Replace([]*testRow{{ID: 1, Name: "a"}})
			o.Execute(All[*testRow]())
			o.Subscribe()

			// Same id, different payload: the policy says equal, no redraw.
			table.Replace([]*testRow{{ID: 1, Name: "z"}})
			if calls != 0 {
				t.Fatalf("calls = %d, want 0 when the policy considers rows equal", calls)
			}

			// Different id: redraw.
			table.Replace([]*testRow{{ID: 2, Name: "z"}})
			if calls != 1 {
				t.Errorf("calls = %d, want 1 when the id changed", calls)
			}
		})

		t.Run("length mismatch always redraws", func(t *testing.T) {
			table := setupTable(t)
			calls := 0
			o := Bind(table, func() { calls++ })
			table.Replace([]*testRow{{ID: 1}})
			o.Execute(All[*testRow]())
			o.Subscribe()
			table.Replace([]*testRow{{ID: 1}, {ID: 1}})
			if calls != 1 {
				t.Errorf("calls = %d, want 1 on length change", calls)
			}
		})

		t.Run("first notification before any Execute redraws", func(t *testing.T) {
			table := setupTable(t)
			calls := 0
			o := Bind(table, func() { calls++ })
			o.Subscribe()
			table.Replace(nil)
			if calls != 1 {
				t.Errorf("calls = %d, want 1 with no previous result", calls)
			}
		})

		t.Run("consecutive notifications are idempotent", func(t *testing.T) {
			table := setupTable(t)
			calls := 0
			o := Bind(table, func() { calls++ })
			o.Subscribe()
			table.Replace([]*testRow{{ID: 1}})
			table.Replace([]*testRow{{ID: 1}})
			if calls != 1 {
				t.Errorf("calls = %d, want 1: the second identical pass must not redraw", calls)
			}
		})

		t.Run("diff short-circuits on first mismatch", func(t *testing.T) {
			compared := 0
			counting, err := New(ByFunc(func(a, b *testRow) bool {
				compared++
				return a.ID == b.ID
			}))
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			o := Bind(counting, func() {})
			counting.Replace([]*testRow{{ID: 1}, {ID: 2}, {ID: 3}})
			o.Execute(All[*testRow]())
			o.Subscribe()
			counting.Replace([]*testRow{{ID: 9}, {ID: 2}, {ID: 3}})
			if compared != 1 {
				t.Errorf("equality invoked %d times, want 1 (short-circuit on first mismatch)", compared)
			}
		})

		t.Run("last result updates even without a redraw", func(t *testing.T) {
			table := setupTable(t)
			calls := 0
			o := Bind(table, func() { calls++ })
			a := []*testRow{{ID: 1, Name: "a"}}
			table.Replace(a)
			o.Execute(All[*testRow]())
			o.Subscribe()

			// Equal under the policy: no redraw, but the remembered result
			// must become this fresh value.
			table.Replace([]*testRow{{ID: 1, Name: "b"}})
			if calls != 0 {
				t.Fatalf("calls = %d, want 0", calls)
			}
			// If the last result had gone stale, this would still look equal.
			table.Replace([]*testRow{{ID: 2, Name: "b"}})
			if calls != 1 {
				t.Errorf("calls = %d, want 1", calls)
			}
		})
	})

	t.Run("re-entrant unsubscribe", func(t *testing.T) {
		table := setupTable(t)
		var first, third int
		o1 := Bind(table, func() { first++ })
		var o2 *Observer[*testRow]
		o2 = Bind(table, func() { o2.Unsubscribe() })
		o3 := Bind(table, func() { third++ })
		o1.Subscribe()
		o2.Subscribe()
		o3.Subscribe()

		table.Replace([]*testRow{{ID: 1}})
		if first != 1 || third != 1 {
			t.Errorf("fan-out skipped members: first = %d, third = %d, want 1 and 1", first, third)
		}

		// o2 detached itself; nothing further reaches it, others still do.
		table.Replace([]*testRow{{ID: 2}})
		if first != 2 || third != 2 {
			t.Errorf("after re-entrant unsubscribe: first = %d, third = %d, want 2 and 2", first, third)
		}
	})

	t.Run("rerender may Execute re-entrantly", func(t *testing.T) {
		table := setupTable(t)
		var o *Observer[*testRow]
		got := -1
		o = Bind(table, func() {
			got = len(o.Execute(All[*testRow]()))
		})
		o.Subscribe()
		table.Replace([]*testRow{{ID: 1}, {ID: 2}})
		if got != 2 {
			t.Errorf("re-entrant Execute saw %d rows, want 2", got)
		}
	})
}
