package values

import (
	"hash/fnv"
	"math"
)

// Truthy implements the falsy set: None, False, 0, 0.0, "", and any empty
// container are false; everything else is true.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case NoneType:
		return false
	case *Bool:
		return x.Value
	case *Int:
		return x.Value != 0
	case *Float:
		return x.Value != 0
	case *Str:
		return x.Value != ""
	case *List:
		return len(x.Items) != 0
	case *Tuple:
		return len(x.Items) != 0
	case *Dict:
		return x.Len() != 0
	case *Set:
		return x.Len() != 0
	case *Range:
		return x.Len() != 0
	default:
		return true
	}
}

// Equal implements Python-style equality: True==1, 1==1.0, containers
// compare element-wise, cycles are handled via a seen-pair guard.
func Equal(a, b Value) bool {
	return equalSeen(a, b, map[[2]uintptr]bool{})
}

func equalSeen(a, b Value, seen map[[2]uintptr]bool) bool {
	an, aIsNum := asFloat(a)
	bn, bIsNum := asFloat(b)
	if aIsNum && bIsNum {
		return an == bn
	}
	switch av := a.(type) {
	case NoneType:
		_, ok := b.(NoneType)
		return ok
	case *Str:
		bv, ok := b.(*Str)
		return ok && av.Value == bv.Value
	case *List:
		bv, ok := b.(*List)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		key := [2]uintptr{ptrOf(av), ptrOf(bv)}
		if seen[key] {
			return true
		}
		seen[key] = true
		for i := range av.Items {
			if !equalSeen(av.Items[i], bv.Items[i], seen) {
				return false
			}
		}
		return true
	case *Tuple:
		bv, ok := b.(*Tuple)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !equalSeen(av.Items[i], bv.Items[i], seen) {
				return false
			}
		}
		return true
	case *Dict:
		bv, ok := b.(*Dict)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		key := [2]uintptr{ptrOf(av), ptrOf(bv)}
		if seen[key] {
			return true
		}
		seen[key] = true
		for _, kv := range av.Items() {
			other, ok := bv.Get(kv[0])
			if !ok || !equalSeen(kv[1], other, seen) {
				return false
			}
		}
		return true
	case *Set:
		bv, ok := b.(*Set)
		if !ok || av.Len() != bv.Len() {
			return false
		}
		for _, item := range av.Items() {
			if !bv.Has(item) {
				return false
			}
		}
		return true
	case *Range:
		bv, ok := b.(*Range)
		return ok && *av == *bv
	}
	return a == b
}

func ptrOf(v Value) uintptr { return uintptrOf(v) }

// IsHashable reports whether v may be used as a dict key or set member.
func IsHashable(v Value) bool {
	switch v.(type) {
	case NoneType, *Bool, *Int, *Float, *Str:
		return true
	case *Tuple:
		t := v.(*Tuple)
		for _, el := range t.Items {
			if !IsHashable(el) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Hash computes a Python-consistent hash: equal values (including the
// True==1==1.0 family) hash identically. Callers must check IsHashable
// first; Hash panics on unhashable input since it is only ever called
// from contexts that already validated hashability.
func Hash(v Value) uint64 {
	h := fnv.New64a()
	switch x := v.(type) {
	case NoneType:
		h.Write([]byte{0})
	case *Bool:
		if x.Value {
			return Hash(MakeInt(1))
		}
		return Hash(MakeInt(0))
	case *Int:
		writeUint64(h, uint64(x.Value))
	case *Float:
		if x.Value == math.Trunc(x.Value) && !math.IsInf(x.Value, 0) {
			return Hash(MakeInt(int64(x.Value)))
		}
		writeUint64(h, math.Float64bits(x.Value))
	case *Str:
		h.Write([]byte(x.Value))
	case *Tuple:
		for _, el := range x.Items {
			writeUint64(h, Hash(el))
		}
	default:
		panic("values: Hash called on unhashable value")
	}
	return h.Sum64()
}

func writeUint64(h interface{ Write([]byte) (int, error) }, v uint64) {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	h.Write(b)
}

func asFloat(v Value) (float64, bool) {
	switch x := v.(type) {
	case *Bool:
		if x.Value {
			return 1, true
		}
		return 0, true
	case *Int:
		return float64(x.Value), true
	case *Float:
		return x.Value, true
	}
	return 0, false
}

// Less implements `<` for orderable same-family values: numerics compare
// by value, strings and sequences compare lexicographically. Cross-type
// comparisons outside the numeric tower are not orderable and the caller
// should raise TypeError.
func Less(a, b Value) (bool, bool) {
	an, aIsNum := asFloat(a)
	bn, bIsNum := asFloat(b)
	if aIsNum && bIsNum {
		return an < bn, true
	}
	switch av := a.(type) {
	case *Str:
		bv, ok := b.(*Str)
		if !ok {
			return false, false
		}
		return av.Value < bv.Value, true
	case *List:
		bv, ok := b.(*List)
		if !ok {
			return false, false
		}
		return lessSeq(av.Items, bv.Items)
	case *Tuple:
		bv, ok := b.(*Tuple)
		if !ok {
			return false, false
		}
		return lessSeq(av.Items, bv.Items)
	}
	return false, false
}

func lessSeq(a, b []Value) (bool, bool) {
	for i := 0; i < len(a) && i < len(b); i++ {
		if Equal(a[i], b[i]) {
			continue
		}
		return Less(a[i], b[i])
	}
	return len(a) < len(b), true
}
