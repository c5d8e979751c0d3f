package live

import "testing"

type testFrame struct{ typ, body string }

func (f testFrame) FrameType() string { return f.typ }

func TestRouter_DispatchByType(t *testing.T) {
	t.Parallel()

	var got []string
	router := NewRouter[testFrame]().
		Handle("text_chunk", func(f testFrame) { got = append(got, "chunk:"+f.body) }).
		Handle("audio", func(f testFrame) { got = append(got, "audio") })

	if !router.Dispatch(testFrame{typ: "text_chunk", body: "hi"}) {
		t.Fatal("text_chunk not handled")
	}
	router.Dispatch(testFrame{typ: "audio"})
	if router.Dispatch(testFrame{typ: "mystery"}) {
		t.Fatal("unknown frame reported handled without fallback")
	}

	router.Fallback(func(f testFrame) { got = append(got, "fallback:"+f.typ) })
	if !router.Dispatch(testFrame{typ: "mystery"}) {
		t.Fatal("fallback not used")
	}

	want := []string{"chunk:hi", "audio", "fallback:mystery"}
	if len(got) != len(want) {
		t.Fatalf("got=%v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got=%v, want %v", got, want)
		}
	}
}

func TestRouter_HandlerLookup(t *testing.T) {
	t.Parallel()

	router := NewRouter[testFrame]()
	if router.Handler("audio") != nil {
		t.Fatal("unregistered type returned a handler")
	}
	hits := 0
	router.Handle("audio", func(testFrame) { hits++ })
	router.Handler("audio")(testFrame{typ: "audio"})
	if hits != 1 {
		t.Fatalf("hits=%d, want 1", hits)
	}
}
