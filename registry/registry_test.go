/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sync"
	"testing"
)

func TestRegisterOverwrites(t *testing.T) {
	r := New[string]()

	if r.Register("bla", "first") {
		t.Error("First registration should not report a replacement")
	}
	if !r.Register("bla", "second") {
		t.Error("Second registration should report a replacement")
	}

	v, ok := r.Lookup("bla")
	if !ok || v != "second" {
		t.Errorf("Expected the newest registration, got %q", v)
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", r.Len())
	}
}

func TestNamesAreCaseSensitiveAndSorted(t *testing.T) {
	r := New[int]()
	r.Register("b", 1)
	r.Register("B", 2)
	r.Register("a", 3)

	names := r.Names()
	expected := []string{"B", "a", "b"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, names)
	}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("name %d: expected %q, got %q", i, expected[i], names[i])
		}
	}

	if _, ok := r.Lookup("A"); ok {
		t.Error("Lookup should be case-sensitive")
	}
}

func TestRemoveAndClear(t *testing.T) {
	r := New[int]()
	r.Register("a", 1)
	r.Register("b", 2)

	r.Remove("a")
	if _, ok := r.Lookup("a"); ok {
		t.Error("Removed name should not be found")
	}

	r.Clear()
	if r.Len() != 0 || len(r.Names()) != 0 {
		t.Error("Clear should remove every registration")
	}
}

func TestConcurrentAccess(t *testing.T) {
	r := New[int]()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.Register(fmt.Sprintf("cmd%d", i%5), i)
		}(i)
		go func() {
			defer wg.Done()
			_ = r.Names()
		}()
	}
	wg.Wait()

	if r.Len() != 5 {
		t.Errorf("Expected 5 names, got %d", r.Len())
	}
}
