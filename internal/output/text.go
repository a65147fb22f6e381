package output

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"
)

// errNotList is returned when table output is requested for a single value.
var errNotList = errors.New("table format requires a list of items")

// column is one labelled value of a struct or map.
type column struct {
	label string
	value reflect.Value
}

// printText renders data for a terminal. Outliners render themselves, structs
// and maps print one "label: value" line per scalar field and lists print one
// item per line.
func (p *Printer) printText(data interface{}) error {
	if o, ok := data.(Outliner); ok {
		return o.WriteOutline(p.w)
	}

	v, ok := indirect(reflect.ValueOf(data))
	if !ok {
		return nil
	}

	switch v.Kind() {
	case reflect.Struct, reflect.Map:
		for _, col := range columnsOf(v) {
			if isList(col.value) {
				continue
			}
			if _, err := fmt.Fprintf(p.w, "%s: %v\n", col.label, col.value.Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if _, err := fmt.Fprintln(p.w, v.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintln(p.w, v.Interface())
		return err
	}
}

// printTable renders a Table, a list of structs or the Results list of a
// struct as aligned columns.
func (p *Printer) printTable(data interface{}) error {
	if table, ok := data.(Table); ok {
		return p.writeTable(table.Headers, table.Rows)
	}

	v, ok := indirect(reflect.ValueOf(data))
	if !ok {
		return nil
	}
	if v.Kind() == reflect.Struct {
		if results := v.FieldByName("Results"); results.IsValid() && results.Kind() == reflect.Slice {
			v = results
		}
	}
	if !isList(v) {
		return errNotList
	}
	if v.Len() == 0 {
		return nil
	}

	table := tableOf(v)
	return p.writeTable(table.Headers, table.Rows)
}

func (p *Printer) writeTable(headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, strings.Join(row, "\t")); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// tableOf builds rows from a list. Struct items use their exported fields
// as columns; any other item is a single "value" column.
func tableOf(list reflect.Value) Table {
	first, _ := indirect(list.Index(0))
	if first.Kind() != reflect.Struct {
		table := Table{Headers: []string{"value"}}
		for i := 0; i < list.Len(); i++ {
			table.Rows = append(table.Rows, []string{fmt.Sprint(list.Index(i).Interface())})
		}
		return table
	}

	var table Table
	for _, col := range columnsOf(first) {
		table.Headers = append(table.Headers, col.label)
	}
	for i := 0; i < list.Len(); i++ {
		item, _ := indirect(list.Index(i))
		if item.Kind() != reflect.Struct {
			table.Rows = append(table.Rows, []string{fmt.Sprint(item.Interface())})
			continue
		}
		row := make([]string, 0, len(table.Headers))
		for _, col := range columnsOf(item) {
			row = append(row, fmt.Sprint(col.value.Interface()))
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// columnsOf lists the exported fields of a struct in declaration order or
// the entries of a map sorted by key.
func columnsOf(v reflect.Value) []column {
	var cols []column
	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			if f := t.Field(i); f.IsExported() {
				cols = append(cols, column{label: fieldLabel(f), value: v.Field(i)})
			}
		}
	case reflect.Map:
		for _, key := range v.MapKeys() {
			cols = append(cols, column{label: fmt.Sprint(key.Interface()), value: v.MapIndex(key)})
		}
		sort.Slice(cols, func(i, j int) bool { return cols[i].label < cols[j].label })
	}
	return cols
}

func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

func isList(v reflect.Value) bool {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	return v.Kind() == reflect.Slice || v.Kind() == reflect.Array
}

func fieldLabel(f reflect.StructField) string {
	if name, _, _ := strings.Cut(f.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return f.Name
}
