package ptr

import "testing"

func TestAllocWriteReadDealloc(t *testing.T) {
	p, err := Alloc(64)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if p.IsNull() {
		t.Fatal("Alloc returned a null pointer")
	}
	if !p.Owned() {
		t.Fatal("Alloc should return an owning pointer")
	}

	if err := p.SetInt32(42, 0); err != nil {
		t.Fatalf("SetInt32: %v", err)
	}
	got, err := p.GetInt32(0)
	if err != nil {
		t.Fatalf("GetInt32: %v", err)
	}
	if got != 42 {
		t.Errorf("GetInt32 = %d, want 42", got)
	}

	if err := Dealloc(&p); err != nil {
		t.Fatalf("Dealloc: %v", err)
	}
	if err := Dealloc(&p); err == nil {
		t.Fatal("second Dealloc should fail InvalidOwnership")
	}
}

func TestDeallocNonOwning(t *testing.T) {
	p := Wrap(0x1000)
	if err := Dealloc(&p); err == nil {
		t.Fatal("Dealloc on a non-owning pointer should fail InvalidOwnership")
	}
}

func TestNullDereference(t *testing.T) {
	p := Null
	if _, err := p.GetInt32(0); err == nil {
		t.Fatal("GetInt32 on null pointer should fail")
	}
	if err := p.SetInt32(1, 0); err == nil {
		t.Fatal("SetInt32 on null pointer should fail")
	}
	if _, err := p.GetString(0); err == nil {
		t.Fatal("GetString on null pointer should fail")
	}
}

func TestStringArrayRoundTrip(t *testing.T) {
	p, err := Alloc(16)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer Dealloc(&p)

	if err := p.SetStringArray("hi", 0, 16); err != nil {
		t.Fatalf("SetStringArray: %v", err)
	}
	got, err := p.GetStringArray(0)
	if err != nil {
		t.Fatalf("GetStringArray: %v", err)
	}
	if got != "hi" {
		t.Errorf("GetStringArray = %q, want %q", got, "hi")
	}
}

func TestSetStringArrayCapacityExceeded(t *testing.T) {
	p, err := Alloc(4)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer Dealloc(&p)

	if err := p.SetStringArray("toolong", 0, 4); err == nil {
		t.Fatal("expected CapacityExceeded")
	}
}

func TestCopy(t *testing.T) {
	src, err := Alloc(8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer Dealloc(&src)
	dst, err := Alloc(8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer Dealloc(&dst)

	src.SetInt64(0x1122334455667788, 0)
	if err := src.Copy(dst, 8); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	got, _ := dst.GetInt64(0)
	if got != 0x1122334455667788 {
		t.Errorf("Copy mismatch: got %x", got)
	}
}

func TestArithmeticAndOrdering(t *testing.T) {
	base := Wrap(0x1000)
	next := base.Add(16)
	if next.Sub(base) != 16 {
		t.Errorf("Sub = %d, want 16", next.Sub(base))
	}
	if !base.Less(next) {
		t.Error("base should be Less than next")
	}
	if base.Equal(next) {
		t.Error("base should not Equal next")
	}
}

func TestArrayView(t *testing.T) {
	p, err := Alloc(4 * 4)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	defer Dealloc(&p)

	arr := MakeArray[int32](p, 4)
	for i := 0; i < arr.Len(); i++ {
		if err := arr.Set(i, int32(i*10)); err != nil {
			t.Fatalf("Set(%d): %v", i, err)
		}
	}
	for i := 0; i < arr.Len(); i++ {
		v, err := arr.Get(i)
		if err != nil {
			t.Fatalf("Get(%d): %v", i, err)
		}
		if v != int32(i*10) {
			t.Errorf("Get(%d) = %d, want %d", i, v, i*10)
		}
	}
	if _, err := arr.Get(4); err == nil {
		t.Error("out-of-bounds Get should fail")
	}
}
