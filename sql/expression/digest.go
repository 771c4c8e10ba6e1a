package expression

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/apd/v3"
	"github.com/mitchellh/hashstructure"

	"gopkg.in/src-d/go-sqlexpr.v0/sql"
)

type exprID uint8

const (
	exprUnknown exprID = iota
	exprInputRef
	exprLocalRef
	exprLiteral
	exprCall
	exprFieldAccess
	exprDynamicParam
	exprCorrelVariable
	exprOver
)

// Hash returns the structural hash of an expression: two expressions that
// are Equal always have the same hash. It's meant to be used as a bucket
// key, with Equal deciding between expressions in the same bucket.
func Hash(e sql.Expression) uint64 {
	h := xxhash.New()
	writeExpr(h, e)
	return h.Sum64()
}

func writeExpr(h *xxhash.Digest, e sql.Expression) {
	var buf [8]byte
	writeInt := func(i int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		_, _ = h.Write(buf[:])
	}

	id := idOf(e)
	_, _ = h.Write([]byte{byte(id)})
	_, _ = h.WriteString(e.Type().String())

	switch e := e.(type) {
	case *InputRef:
		writeInt(e.index)
	case *LocalRef:
		writeInt(e.index)
	case *DynamicParam:
		writeInt(e.index)
	case *CorrelVariable:
		_, _ = h.WriteString(e.name)
	case *FieldAccess:
		writeInt(e.index)
	case *Literal:
		binary.LittleEndian.PutUint64(buf[:], hashValue(e.value))
		_, _ = h.Write(buf[:])
	case *Call:
		_, _ = h.WriteString(e.op.Name())
	case *Over:
		_, _ = h.WriteString(e.op.Name())
		writeInt(len(e.operands))
		writeInt(len(e.partitionBy))
		writeInt(e.frame.Preceding)
		writeInt(e.frame.Following)
	default:
		_, _ = h.WriteString(fmt.Sprintf("%T", e))
		_, _ = h.WriteString(e.String())
	}

	children := e.Children()
	writeInt(len(children))
	for _, c := range children {
		writeExpr(h, c)
	}
}

func hashValue(v interface{}) uint64 {
	switch v := v.(type) {
	case nil:
		return 0
	case *apd.Decimal:
		return xxhash.Sum64String(v.Text('E'))
	case time.Time:
		return uint64(v.UnixNano())
	case sql.Row:
		h := xxhash.New()
		var buf [8]byte
		for _, f := range v {
			binary.LittleEndian.PutUint64(buf[:], hashValue(f))
			_, _ = h.Write(buf[:])
		}
		return h.Sum64()
	}

	hash, err := hashstructure.Hash(v, nil)
	if err != nil {
		return xxhash.Sum64String(fmt.Sprintf("%T:%v", v, v))
	}
	return hash
}

func idOf(e sql.Expression) exprID {
	switch e.(type) {
	case *InputRef:
		return exprInputRef
	case *LocalRef:
		return exprLocalRef
	case *Literal:
		return exprLiteral
	case *Call:
		return exprCall
	case *FieldAccess:
		return exprFieldAccess
	case *DynamicParam:
		return exprDynamicParam
	case *CorrelVariable:
		return exprCorrelVariable
	case *Over:
		return exprOver
	}
	return exprUnknown
}

// Equal returns whether both expressions are structurally identical: same
// kind of node, same operator, same type and equal children in the same
// order. Literals are equal when they hold the same value with the same
// type.
func Equal(a, b sql.Expression) bool {
	if a == b {
		return true
	}

	if idOf(a) != idOf(b) || !a.Type().Equals(b.Type()) {
		return false
	}

	switch a := a.(type) {
	case *InputRef:
		if a.index != b.(*InputRef).index {
			return false
		}
	case *LocalRef:
		if a.index != b.(*LocalRef).index {
			return false
		}
	case *DynamicParam:
		if a.index != b.(*DynamicParam).index {
			return false
		}
	case *CorrelVariable:
		if a.name != b.(*CorrelVariable).name {
			return false
		}
	case *FieldAccess:
		if a.index != b.(*FieldAccess).index {
			return false
		}
	case *Literal:
		return valuesEqual(a.value, b.(*Literal).value)
	case *Call:
		if a.op != b.(*Call).op {
			return false
		}
	case *Over:
		bo := b.(*Over)
		if a.op != bo.op || a.frame != bo.frame ||
			len(a.operands) != len(bo.operands) || len(a.partitionBy) != len(bo.partitionBy) {
			return false
		}
	default:
		if reflect.TypeOf(a) != reflect.TypeOf(b) || a.String() != b.String() {
			return false
		}
	}

	ac, bc := a.Children(), b.Children()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b interface{}) bool {
	switch a := a.(type) {
	case nil:
		return b == nil
	case *apd.Decimal:
		bd, ok := b.(*apd.Decimal)
		return ok && a.Cmp(bd) == 0 && a.Exponent == bd.Exponent && a.Negative == bd.Negative
	case float64:
		// 0 and -0 are different values.
		bf, ok := b.(float64)
		return ok && math.Float64bits(a) == math.Float64bits(bf)
	case float32:
		bf, ok := b.(float32)
		return ok && math.Float32bits(a) == math.Float32bits(bf)
	case time.Time:
		bt, ok := b.(time.Time)
		return ok && a.Equal(bt)
	case sql.Row:
		br, ok := b.(sql.Row)
		if !ok || len(a) != len(br) {
			return false
		}
		for i := range a {
			if !valuesEqual(a[i], br[i]) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a, b)
}
