package jsonidx

import "testing"

func TestWriteHeaderCanonicalOrder(t *testing.T) {
	got, err := WriteHeader(nil, []Member{
		{Key: "kid", Value: "k1"},
		{Key: "enc", Value: "A128GCM"},
		{Key: "alg", Value: "A128KW"},
		{Key: "zip", Value: "DEF"},
		{Key: "typ", Value: "JWT"},
		{Key: "cty", Value: "JWT"},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := `{"alg":"A128KW","enc":"A128GCM","zip":"DEF","cty":"JWT","typ":"JWT","kid":"k1"}`
	if string(got) != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestWriteHeaderExtensionsInInsertionOrder(t *testing.T) {
	got, err := WriteHeader(nil, []Member{
		{Key: "alg", Value: "dir"},
		{Key: "p2c", Value: 4096},
		{Key: "apu", Value: "QWxpY2U"},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := `{"alg":"dir","p2c":4096,"apu":"QWxpY2U"}`
	if string(got) != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestWriteHeaderDuplicateLastWins(t *testing.T) {
	got, err := WriteHeader(nil, []Member{
		{Key: "alg", Value: "none"},
		{Key: "x", Value: 1},
		{Key: "x", Value: 2},
	})
	if err != nil {
		t.Fatal(err)
	}

	want := `{"alg":"none","x":2}`
	if string(got) != want {
		t.Errorf("got %s\nwant %s", got, want)
	}
}

func TestWriteHeaderRoundTripsThroughParse(t *testing.T) {
	out, err := WriteHeader(nil, []Member{
		{Key: "alg", Value: "HS256"},
		{Key: "crit", Value: []string{"exp"}},
		{Key: "exp", Value: true},
	})
	if err != nil {
		t.Fatal(err)
	}

	idx, err := Parse(out)
	if err != nil {
		t.Fatalf("writer output does not parse: %v (%s)", err, out)
	}

	alg, ok := idx.Member(Element(idx.Root), "alg")
	if !ok {
		t.Fatal("missing alg")
	}
	if s, _ := idx.String(alg); s != "HS256" {
		t.Errorf("alg = %q", s)
	}
}
