package styleclass

import (
	"encoding/json"
	"testing"
)

func TestAddGetRemove(t *testing.T) {
	c := New()

	c.Add("form1", "red")
	c.Add("form1", "bold")
	if got, ok := c.Get("form1"); !ok || got != "red bold" {
		t.Fatalf("Get = %q, %v; want %q", got, ok, "red bold")
	}

	c.Remove("form1", "red")
	if got, _ := c.Get("form1"); got != "bold" {
		t.Fatalf("Get = %q, want %q", got, "bold")
	}

	c.Remove("form1", "bold")
	if got, ok := c.Get("form1"); ok {
		t.Fatalf("Get = %q, want missing", got)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestAddKeepsDuplicates(t *testing.T) {
	c := New()
	c.Add("f", "red")
	c.Add("f", "red")

	if got, _ := c.Get("f"); got != "red red" {
		t.Fatalf("Get = %q, want %q", got, "red red")
	}

	c.Remove("f", "red")
	if got, _ := c.Get("f"); got != "red" {
		t.Errorf("after one Remove Get = %q, want %q", got, "red")
	}
}

func TestRemoveCompactsInOrder(t *testing.T) {
	c := New()
	c.Add("a", "x")
	c.Add("b", "y")
	c.Add("c", "z")

	c.Remove("b", "y")

	entries := c.Entries()
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].FormName != "a" || entries[1].FormName != "c" {
		t.Errorf("entries = %+v, want [a c]", entries)
	}
	if got, _ := c.Get("c"); got != "z" {
		t.Errorf("Get(c) = %q, want z", got)
	}
}

func TestRemoveNoops(t *testing.T) {
	c := New()
	c.Remove("missing", "x")
	if c.Present() {
		t.Error("Remove on empty table should not initialize it")
	}

	c.Add("f", "red")
	c.Remove("f", "blue")
	c.Remove("other", "red")
	if got, _ := c.Get("f"); got != "red" {
		t.Errorf("Get = %q, want red", got)
	}
}

func TestGetUnknown(t *testing.T) {
	c := New()
	if _, ok := c.Get("nope"); ok {
		t.Error("Get on unknown form should report false")
	}
}

func TestJSON(t *testing.T) {
	c := New()
	data, _ := json.Marshal(c)
	if string(data) != "null" {
		t.Errorf("absent JSON = %s, want null", data)
	}

	c.Add("f", "a")
	data, err := json.Marshal(c)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `[{"formname":"f","styleclass":"a"}]` {
		t.Errorf("JSON = %s", data)
	}

	var back Classes
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if got, _ := back.Get("f"); got != "a" {
		t.Errorf("decoded Get = %q", got)
	}
}
