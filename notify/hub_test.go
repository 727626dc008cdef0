package notify

import "testing"

func TestHub_DeliversToSubscribersInOrder(t *testing.T) {
	hub := NewHub()

	var got []string
	hub.Subscribe(VisitStarted, func(payload string) { got = append(got, "first:"+payload) })
	hub.Subscribe(VisitStarted, func(payload string) { got = append(got, "second:"+payload) })

	hub.Announce(VisitStarted, "a.md")

	want := []string{"first:a.md", "second:a.md"}
	if len(got) != len(want) {
		t.Fatalf("delivered %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivered %v, want %v", got, want)
		}
	}
}

func TestHub_AnnounceWithoutSubscribersIsNoop(t *testing.T) {
	hub := NewHub()
	hub.Announce(VisitEnded, "a.md")
}

func TestHub_EventsAreIndependent(t *testing.T) {
	hub := NewHub()

	started, ended := 0, 0
	hub.Subscribe(VisitStarted, func(string) { started++ })
	hub.Subscribe(VisitEnded, func(string) { ended++ })

	hub.Announce(VisitStarted, "a.md")
	hub.Announce(VisitStarted, "b.md")
	hub.Announce(VisitEnded, "a.md")

	if started != 2 || ended != 1 {
		t.Fatalf("started=%d ended=%d", started, ended)
	}
}
