package output

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Table is a pre-rendered table. Rows are sorted and limited by column
// header.
type Table struct {
	Headers []string   `json:"headers,omitempty" yaml:"headers,omitempty"`
	Rows    [][]string `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// lookuper is an ordered mapping addressed by key.
type lookuper interface {
	Lookup(key string) (interface{}, bool)
}

// ApplyResultOptions applies --result-limit, --result-sort-by and
// --result-desc to the top-level list in data: a slice, the Results field
// of a struct or the rows of a Table. The input is never modified.
func ApplyResultOptions(ctx context.Context, data interface{}) interface{} {
	limit := LimitFromContext(ctx)
	sortBy, desc := SortFromContext(ctx)
	if data == nil || (limit <= 0 && sortBy == "") {
		return data
	}

	switch d := data.(type) {
	case lookuper:
		// A single mapping is one result, not a list of its fields.
		return data
	case Table:
		d.Rows = limitRows(sortRows(d.Headers, d.Rows, sortBy, desc), limit)
		return d
	}

	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return data
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		return reorder(v, sortBy, desc, limit).Interface()
	case reflect.Struct:
		results := v.FieldByName("Results")
		if !results.IsValid() || results.Kind() != reflect.Slice {
			return data
		}
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		out.FieldByName("Results").Set(reorder(results, sortBy, desc, limit))
		return out.Interface()
	}
	return data
}

// reorder returns a sorted and limited copy of a slice value.
func reorder(v reflect.Value, sortBy string, desc bool, limit int) reflect.Value {
	sliceType := v.Type()
	if v.Kind() == reflect.Array {
		sliceType = reflect.SliceOf(sliceType.Elem())
	}
	out := reflect.MakeSlice(sliceType, v.Len(), v.Len())
	reflect.Copy(out, v)

	if sortBy != "" {
		path := strings.Split(sortBy, ".")
		keys := make([]sortKey, out.Len())
		for i := range keys {
			keys[i] = keyAt(out.Index(i), path)
		}
		perm := make([]int, len(keys))
		for i := range perm {
			perm[i] = i
		}
		sort.SliceStable(perm, func(i, j int) bool {
			return keys[perm[i]].less(keys[perm[j]], desc)
		})
		sorted := reflect.MakeSlice(sliceType, out.Len(), out.Len())
		for i, idx := range perm {
			sorted.Index(i).Set(out.Index(idx))
		}
		out = sorted
	}

	if limit > 0 && limit < out.Len() {
		out = out.Slice(0, limit)
	}
	return out
}

func sortRows(headers []string, rows [][]string, sortBy string, desc bool) [][]string {
	out := append([][]string(nil), rows...)
	if sortBy == "" {
		return out
	}
	col := -1
	for i, h := range headers {
		if normalizeName(h) == normalizeName(sortBy) {
			col = i
			break
		}
	}
	if col < 0 {
		return out
	}
	cell := func(row []string) sortKey {
		if col >= len(row) {
			return sortKey{}
		}
		return newSortKey(row[col])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return cell(out[i]).less(cell(out[j]), desc)
	})
	return out
}

func limitRows(rows [][]string, limit int) [][]string {
	if limit > 0 && limit < len(rows) {
		return rows[:limit]
	}
	return rows
}

// sortKey is a comparable view of a field value. Numbers compare
// numerically, everything else by its string form. Missing keys sort last
// in either direction.
type sortKey struct {
	ok      bool
	numeric bool
	num     float64
	str     string
}

func newSortKey(v interface{}) sortKey {
	key := sortKey{ok: true, str: fmt.Sprint(v)}
	switch n := v.(type) {
	case int:
		key.numeric, key.num = true, float64(n)
	case int64:
		key.numeric, key.num = true, float64(n)
	case float64:
		key.numeric, key.num = true, n
	case string:
		if f, err := strconv.ParseFloat(n, 64); err == nil {
			key.numeric, key.num = true, f
		}
	}
	return key
}

func (a sortKey) less(b sortKey, desc bool) bool {
	if !a.ok || !b.ok {
		return a.ok && !b.ok
	}
	var cmp int
	if a.numeric && b.numeric {
		switch {
		case a.num < b.num:
			cmp = -1
		case a.num > b.num:
			cmp = 1
		}
	} else {
		cmp = strings.Compare(a.str, b.str)
	}
	if desc {
		return cmp > 0
	}
	return cmp < 0
}

// keyAt follows a dotted path through mappings, maps and struct fields.
func keyAt(v reflect.Value, path []string) sortKey {
	for _, name := range path {
		for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return sortKey{}
			}
			v = v.Elem()
		}
		if !v.IsValid() {
			return sortKey{}
		}

		if v.CanInterface() {
			if l, ok := v.Interface().(lookuper); ok {
				val, found := l.Lookup(name)
				if !found {
					return sortKey{}
				}
				v = reflect.ValueOf(val)
				continue
			}
		}

		switch v.Kind() {
		case reflect.Map:
			next, ok := mapValue(v, name)
			if !ok {
				return sortKey{}
			}
			v = next
		case reflect.Struct:
			next, ok := structField(v, name)
			if !ok {
				return sortKey{}
			}
			v = next
		default:
			return sortKey{}
		}
	}

	if !v.IsValid() || !v.CanInterface() {
		return sortKey{}
	}
	return newSortKey(v.Interface())
}

func mapValue(v reflect.Value, name string) (reflect.Value, bool) {
	if v.Type().Key().Kind() != reflect.String {
		return reflect.Value{}, false
	}
	for _, key := range v.MapKeys() {
		if normalizeName(key.String()) == normalizeName(name) {
			return v.MapIndex(key), true
		}
	}
	return reflect.Value{}, false
}

func structField(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.IsExported() && normalizeName(fieldLabel(f)) == normalizeName(name) {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func normalizeName(s string) string {
	return strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(s))
}
