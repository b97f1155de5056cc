package diff

import (
	"reflect"
	"slices"
	"strings"

	"github.com/google/uuid"
	odiff "github.com/r3labs/diff/v3"
	"github.com/shopspring/decimal"
)

func GetCustomDiffer() *odiff.Differ {
	ret, err := odiff.NewDiffer(odiff.CustomValueDiffers(&UUIDComparer{}, &DecimalComparer{}))
	if err != nil {
		panic(err)
	}
	return ret
}

// Changes returns the dotted paths of the fields that differ between a
// and b, sorted. Paths whose top-level field is in ignore are left out.
func Changes(a, b any, ignore ...string) ([]string, error) {
	cl, err := GetCustomDiffer().Diff(a, b)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(cl))
	for _, c := range cl {
		if len(c.Path) == 0 || slices.Contains(ignore, c.Path[0]) {
			continue
		}
		paths = append(paths, strings.Join(c.Path, "."))
	}
	slices.Sort(paths)
	return slices.Compact(paths), nil
}

var (
	uuidType    = reflect.TypeOf(uuid.UUID{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// matchLeaf reports whether a and b are both of type t, or one of them
// is of type t and the other is missing.
func matchLeaf(t reflect.Type, a, b reflect.Value) bool {
	aok := a.IsValid() && a.Type() == t
	bok := b.IsValid() && b.Type() == t
	return (aok && bok) || (!a.IsValid() && bok) || (!b.IsValid() && aok)
}

func valueOrNil(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

type UUIDComparer struct{}

func (c UUIDComparer) Match(a, b reflect.Value) bool {
	return matchLeaf(uuidType, a, b)
}

// Diff records a single update instead of walking the UUID bytes.
func (c UUIDComparer) Diff(_ odiff.DiffType, _ odiff.DiffFunc, cl *odiff.Changelog, path []string, a reflect.Value, b reflect.Value, _ interface{}) error {
	if !a.IsValid() || !b.IsValid() {
		if a.IsValid() != b.IsValid() {
			cl.Add(odiff.UPDATE, path, valueOrNil(a), valueOrNil(b))
		}
		return nil
	}
	u1 := a.Interface().(uuid.UUID)
	u2 := b.Interface().(uuid.UUID)
	if u1 != u2 {
		cl.Add(odiff.UPDATE, path, u1, u2)
	}
	return nil
}

// InsertParentDiffer is a no-op, UUIDs are leaves.
func (c UUIDComparer) InsertParentDiffer(_ func(path []string, a reflect.Value, b reflect.Value, p interface{}) error) {
}

// DecimalComparer compares decimals numerically, so 10 and 10.00 are
// the same amount.
type DecimalComparer struct{}

func (c DecimalComparer) Match(a, b reflect.Value) bool {
	return matchLeaf(decimalType, a, b)
}

func (c DecimalComparer) Diff(_ odiff.DiffType, _ odiff.DiffFunc, cl *odiff.Changelog, path []string, a reflect.Value, b reflect.Value, _ interface{}) error {
	if !a.IsValid() || !b.IsValid() {
		if a.IsValid() != b.IsValid() {
			cl.Add(odiff.UPDATE, path, valueOrNil(a), valueOrNil(b))
		}
		return nil
	}
	d1 := a.Interface().(decimal.Decimal)
	d2 := b.Interface().(decimal.Decimal)
	if !d1.Equal(d2) {
		cl.Add(odiff.UPDATE, path, d1, d2)
	}
	return nil
}

func (c DecimalComparer) InsertParentDiffer(_ func(path []string, a reflect.Value, b reflect.Value, p interface{}) error) {
}
