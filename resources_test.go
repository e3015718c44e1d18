package hako

import (
	"testing"

	"github.com/rotisserie/eris"
)

func TestResources(t *testing.T) {
	type testStruct1 struct{ N int }
	type testStruct2 struct{}

	t.Run("Add and Get", func(t *testing.T) {
		r := &Resources{}
		res1 := &testStruct1{}
		id, err := r.Add(res1)
		if err != nil {
			t.Fatal(err)
		}
		if id != 0 {
			t.Errorf("expected id 0, got %d", id)
		}
		if got := r.Get(0); got != res1 {
			t.Errorf("expected %v, got %v", res1, got)
		}
	})

	t.Run("Has", func(t *testing.T) {
		r := &Resources{}
		_, _ = r.Add(&testStruct1{})
		if !r.Has(0) {
			t.Error("expected true")
		}
		if r.Has(1) || r.Has(-1) {
			t.Error("expected false")
		}
	})

	t.Run("Add same type fails", func(t *testing.T) {
		r := &Resources{}
		_, _ = r.Add(&testStruct1{})
		_, err := r.Add(&testStruct1{})
		if !eris.Is(err, ErrResourceExists) {
			t.Errorf("expected ErrResourceExists, got %v", err)
		}
	})

	t.Run("Add nil fails", func(t *testing.T) {
		r := &Resources{}
		if _, err := r.Add(nil); err == nil {
			t.Error("expected an error")
		}
		if _, err := AddResource[testStruct1](r, nil); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("Remove reuses ids", func(t *testing.T) {
		r := &Resources{}
		_, _ = r.Add(&testStruct1{})
		_, _ = r.Add(&testStruct2{})
		r.Remove(0)
		if r.Has(0) {
			t.Error("expected removed")
		}
		if r.Len() != 1 {
			t.Errorf("expected 1 resource, got %d", r.Len())
		}
		id, err := r.Add(&testStruct1{})
		if err != nil || id != 0 {
			t.Errorf("expected id 0 to be reused, got %d (%v)", id, err)
		}
		r.Remove(5)
	})

	t.Run("Generic access", func(t *testing.T) {
		r := &Resources{}
		if _, err := AddResource(r, &testStruct1{N: 7}); err != nil {
			t.Fatal(err)
		}
		ok, id := HasResource[testStruct1](r)
		if !ok || id != 0 {
			t.Errorf("expected (true, 0), got (%v, %d)", ok, id)
		}
		res, id := GetResource[testStruct1](r)
		if res == nil || res.N != 7 || id != 0 {
			t.Errorf("unexpected %v %d", res, id)
		}
		if got, id := GetResource[testStruct2](r); got != nil || id != -1 {
			t.Errorf("expected nil, -1, got %v, %d", got, id)
		}
		if !RemoveResource[testStruct1](r) {
			t.Error("expected removal")
		}
		if RemoveResource[testStruct1](r) {
			t.Error("expected nothing to remove")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		r := &Resources{}
		_, _ = r.Add(&testStruct1{})
		_, _ = r.Add(&testStruct2{})
		r.Clear()
		if r.Has(0) || r.Len() != 0 {
			t.Error("expected empty")
		}
		if ok, _ := HasResource[testStruct1](r); ok {
			t.Error("expected no testStruct1")
		}
	})

	t.Run("World resources", func(t *testing.T) {
		w := NewWorld()
		if _, err := AddResource(w.Resources(), &testStruct1{N: 1}); err != nil {
			t.Fatal(err)
		}
		if w.Stats().NumResources != 1 {
			t.Error("expected the world to report its resource")
		}
	})
}
