package event

import "testing"

func TestDispatchInvokesHandlersInRegistrationOrder(t *testing.T) {
	d := NewDispatcher()
	var order []int
	d.Subscribe("tick", nil, func(args ...interface{}) { order = append(order, 1) })
	d.Subscribe("tick", nil, func(args ...interface{}) { order = append(order, 2) })
	d.Subscribe("tick", nil, func(args ...interface{}) { order = append(order, 3) })

	d.Dispatch("tick")

	want := []int{1, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v, want %v", order, want)
		}
	}
}

func TestDispatchPassesArgs(t *testing.T) {
	d := NewDispatcher()
	var got string
	d.Subscribe("named", nil, func(args ...interface{}) {
		got = args[0].(string)
	})
	d.Dispatch("named", "hello")
	if got != "hello" {
		t.Fatalf("got %q, want %q", got, "hello")
	}
}

func TestUnsubscribeRemovesOnlyThatToken(t *testing.T) {
	d := NewDispatcher()
	calls := 0
	tok := d.Subscribe("tick", "owner-a", func(args ...interface{}) { calls++ })
	d.Subscribe("tick", "owner-b", func(args ...interface{}) { calls++ })

	d.Unsubscribe(tok)
	d.Dispatch("tick")

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDispatchOnUnknownEventIsNoop(t *testing.T) {
	d := NewDispatcher()
	d.Dispatch("nothing-subscribed")
}
