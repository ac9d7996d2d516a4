package ir

import (
	"bytes"
	"encoding/binary"
	"iter"
	"math"
	"slices"

	"github.com/cockroachdb/apd/v3"
	"github.com/dchest/siphash"

	"github.com/dshills/QuantaIR/internal/sql/types"
)

// PreOrder yields root and all of its descendants depth first, parents before
// children and children in Children() order. Each range over the sequence
// starts a fresh traversal.
func PreOrder(root Expression) iter.Seq[Expression] {
	return func(yield func(Expression) bool) {
		stack := []Expression{root}
		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(node) {
				return
			}
			children := node.Children()
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, children[i])
			}
		}
	}
}

// SubtreeComparator decides equality of two subtrees. When decided is false
// TreeEqual falls back to comparing the nodes structurally.
type SubtreeComparator func(left, right Expression) (equal, decided bool)

// SubtreeHasher overrides the hash of a subtree when ok is true.
type SubtreeHasher func(node Expression) (hash uint64, ok bool)

// TreeEqual compares two trees. At each pair of nodes the comparator is asked
// first; if it defers, the nodes must be shallowly equal and have the same
// number of children, which are compared pairwise in order.
func TreeEqual(left, right Expression, comparator SubtreeComparator) bool {
	if comparator != nil {
		if equal, decided := comparator(left, right); decided {
			return equal
		}
	}
	if !ShallowEqual(left, right) {
		return false
	}
	lc, rc := left.Children(), right.Children()
	if len(lc) != len(rc) {
		return false
	}
	for i := range lc {
		if !TreeEqual(lc[i], rc[i], comparator) {
			return false
		}
	}
	return true
}

// TreeHash hashes a tree consistently with TreeEqual for a matching pair of
// comparator and hasher.
func TreeHash(node Expression, hasher SubtreeHasher) uint64 {
	if hasher != nil {
		if h, ok := hasher(node); ok {
			return h
		}
	}
	h := ShallowHash(node)
	for _, child := range node.Children() {
		h = 31*h + TreeHash(child, hasher)
	}
	return h
}

// Equal reports whether a and b are structurally equal
func Equal(a, b Expression) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a == b {
		return true
	}
	return TreeEqual(a, b, nil)
}

// Hash returns the structural hash of e
func Hash(e Expression) uint64 {
	return TreeHash(e, nil)
}

// ShallowEqual compares the variant and local fields of two nodes, ignoring
// their children.
func ShallowEqual(a, b Expression) bool {
	switch a := a.(type) {
	case *Constant:
		b, ok := b.(*Constant)
		return ok && types.Equal(a.Type, b.Type) && ValueEqual(a.Value, b.Value)
	case *Reference:
		b, ok := b.(*Reference)
		return ok && a.Name == b.Name && types.Equal(a.Type, b.Type)
	case *Call:
		b, ok := b.(*Call)
		return ok && a.Function.Equal(b.Function)
	case *Arithmetic:
		b, ok := b.(*Arithmetic)
		return ok && a.Operator == b.Operator && a.Function.Equal(b.Function)
	case *Comparison:
		b, ok := b.(*Comparison)
		return ok && a.Operator == b.Operator
	case *Logical:
		b, ok := b.(*Logical)
		return ok && a.Operator == b.Operator
	case *Not:
		_, ok := b.(*Not)
		return ok
	case *IsNull:
		_, ok := b.(*IsNull)
		return ok
	case *Between:
		_, ok := b.(*Between)
		return ok
	case *In:
		_, ok := b.(*In)
		return ok
	case *Cast:
		b, ok := b.(*Cast)
		return ok && a.Safe == b.Safe && types.Equal(a.Type, b.Type)
	case *Row:
		_, ok := b.(*Row)
		return ok
	case *Subscript:
		_, ok := b.(*Subscript)
		return ok
	case *SearchedCase:
		b, ok := b.(*SearchedCase)
		return ok && len(a.WhenClauses) == len(b.WhenClauses) && (a.Default == nil) == (b.Default == nil)
	case *SimpleCase:
		b, ok := b.(*SimpleCase)
		return ok && len(a.WhenClauses) == len(b.WhenClauses) && (a.Default == nil) == (b.Default == nil)
	case *Coalesce:
		_, ok := b.(*Coalesce)
		return ok
	case *NullIf:
		_, ok := b.(*NullIf)
		return ok
	case *Lambda:
		b, ok := b.(*Lambda)
		return ok && slices.Equal(a.Arguments, b.Arguments)
	case *Bind:
		b, ok := b.(*Bind)
		return ok && len(a.Values) == len(b.Values)
	}
	return false
}

// ValueEqual compares two constant values. NaN equals NaN and decimals are
// compared numerically.
func ValueEqual(a, b any) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case bool:
		b, ok := b.(bool)
		return ok && a == b
	case int64:
		b, ok := b.(int64)
		return ok && a == b
	case float64:
		b, ok := b.(float64)
		return ok && (a == b || (math.IsNaN(a) && math.IsNaN(b)))
	case *apd.Decimal:
		b, ok := b.(*apd.Decimal)
		return ok && decimalKey(a) == decimalKey(b)
	case string:
		b, ok := b.(string)
		return ok && a == b
	case []byte:
		b, ok := b.([]byte)
		return ok && bytes.Equal(a, b)
	case []any:
		b, ok := b.([]any)
		if !ok || len(a) != len(b) {
			return false
		}
		for i := range a {
			if !ValueEqual(a[i], b[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func decimalKey(d *apd.Decimal) string {
	var r apd.Decimal
	r.Reduce(d)
	return r.String()
}

// Keys for the shallow hash. The values are arbitrary but must stay fixed.
const (
	hashKey0 = 0x5175616e74614952
	hashKey1 = 0x6972206e6f646573
)

// ShallowHash hashes the variant and local fields of a node
func ShallowHash(e Expression) uint64 {
	var buf bytes.Buffer
	tag := func(t byte) { buf.WriteByte(t) }
	str := func(s string) {
		writeUvarint(&buf, uint64(len(s)))
		buf.WriteString(s)
	}
	switch e := e.(type) {
	case *Constant:
		tag(1)
		str(e.Type.Name())
		writeValue(&buf, e.Value)
	case *Reference:
		tag(2)
		str(e.Name)
		str(e.Type.Name())
	case *Call:
		tag(3)
		str(e.Function.String())
	case *Arithmetic:
		tag(4)
		buf.WriteByte(byte(e.Operator))
		str(e.Function.String())
	case *Comparison:
		tag(5)
		buf.WriteByte(byte(e.Operator))
	case *Logical:
		tag(6)
		buf.WriteByte(byte(e.Operator))
	case *Not:
		tag(7)
	case *IsNull:
		tag(8)
	case *Between:
		tag(9)
	case *In:
		tag(10)
	case *Cast:
		tag(11)
		str(e.Type.Name())
		if e.Safe {
			buf.WriteByte(1)
		}
	case *Row:
		tag(12)
	case *Subscript:
		tag(13)
	case *SearchedCase:
		tag(14)
		writeUvarint(&buf, uint64(len(e.WhenClauses)))
		if e.Default != nil {
			buf.WriteByte(1)
		}
	case *SimpleCase:
		tag(15)
		writeUvarint(&buf, uint64(len(e.WhenClauses)))
		if e.Default != nil {
			buf.WriteByte(1)
		}
	case *Coalesce:
		tag(16)
	case *NullIf:
		tag(17)
	case *Lambda:
		tag(18)
		for _, a := range e.Arguments {
			str(a)
		}
	case *Bind:
		tag(19)
		writeUvarint(&buf, uint64(len(e.Values)))
	}
	return siphash.Hash(hashKey0, hashKey1, buf.Bytes())
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scratch[:], v)
	buf.Write(scratch[:n])
}

func writeValue(buf *bytes.Buffer, v any) {
	switch v := v.(type) {
	case nil:
		buf.WriteByte(0)
	case bool:
		buf.WriteByte(1)
		if v {
			buf.WriteByte(1)
		}
	case int64:
		buf.WriteByte(2)
		writeUvarint(buf, uint64(v))
	case float64:
		buf.WriteByte(3)
		switch {
		case math.IsNaN(v):
			v = math.NaN()
		case v == 0:
			v = 0
		}
		writeUvarint(buf, math.Float64bits(v))
	case *apd.Decimal:
		buf.WriteByte(4)
		buf.WriteString(decimalKey(v))
	case string:
		buf.WriteByte(5)
		writeUvarint(buf, uint64(len(v)))
		buf.WriteString(v)
	case []byte:
		buf.WriteByte(6)
		writeUvarint(buf, uint64(len(v)))
		buf.Write(v)
	case []any:
		buf.WriteByte(7)
		writeUvarint(buf, uint64(len(v)))
		for _, item := range v {
			writeValue(buf, item)
		}
	}
}

// ExtractReferences returns the references in e that are not bound by an
// enclosing lambda, in pre-order.
func ExtractReferences(e Expression) []*Reference {
	var out []*Reference
	var walk func(e Expression, bound map[string]bool)
	walk = func(e Expression, bound map[string]bool) {
		switch n := e.(type) {
		case *Reference:
			if !bound[n.Name] {
				out = append(out, n)
			}
			return
		case *Lambda:
			inner := make(map[string]bool, len(bound)+len(n.Arguments))
			for k := range bound {
				inner[k] = true
			}
			for _, a := range n.Arguments {
				inner[a] = true
			}
			walk(n.Body, inner)
			return
		}
		for _, child := range e.Children() {
			walk(child, bound)
		}
	}
	walk(e, nil)
	return out
}

// ReferenceNames returns the distinct names of the free references in e, in
// order of first appearance.
func ReferenceNames(e Expression) []string {
	var names []string
	seen := make(map[string]bool)
	for _, r := range ExtractReferences(e) {
		if !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}
	return names
}
