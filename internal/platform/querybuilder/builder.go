// Package querybuilder renders the few PostgreSQL statements the document
// store issues, with positional $n placeholders.
package querybuilder

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var ErrIncomplete = errors.New("incomplete statement")

// binder hands out placeholders in the order values are bound.
type binder struct {
	args []any
}

func (b *binder) bind(value any) string {
	b.args = append(b.args, value)
	return "$" + strconv.Itoa(len(b.args))
}

// Condition is one term of an AND-joined WHERE clause.
type Condition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return Condition{column: column, value: value}
}

func writeWhere(sb *strings.Builder, b *binder, conds []Condition) {
	for i, c := range conds {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		sb.WriteString(c.column)
		sb.WriteString(" = ")
		sb.WriteString(b.bind(c.value))
	}
}

func writeReturning(sb *strings.Builder, columns []string) {
	if len(columns) == 0 {
		return
	}
	sb.WriteString(" RETURNING ")
	sb.WriteString(strings.Join(columns, ", "))
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

func (s *SelectBuilder) From(table string) *SelectBuilder {
	s.table = table
	return s
}

func (s *SelectBuilder) Where(conds ...Condition) *SelectBuilder {
	s.where = append(s.where, conds...)
	return s
}

func (s *SelectBuilder) ToSQL() (string, []any, error) {
	if len(s.columns) == 0 || strings.TrimSpace(s.table) == "" {
		return "", nil, fmt.Errorf("%w: select needs columns and a table", ErrIncomplete)
	}

	var (
		sb strings.Builder
		b  binder
	)
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(s.columns, ", "), s.table)
	writeWhere(&sb, &b, s.where)
	return sb.String(), b.args, nil
}

type InsertBuilder struct {
	table        string
	columns      []string
	values       []any
	conflictKeys []string
	returning    []string
	err          error
}

func Insert(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// Model takes columns and values from the struct's db tags, in field order.
func (i *InsertBuilder) Model(model any) *InsertBuilder {
	i.columns, i.values, i.err = taggedColumns(model)
	return i
}

// OnConflictDoNothing skips the insert when a row with the same keys exists;
// combined with Returning the statement then yields no row.
func (i *InsertBuilder) OnConflictDoNothing(keys ...string) *InsertBuilder {
	i.conflictKeys = keys
	return i
}

func (i *InsertBuilder) Returning(columns ...string) *InsertBuilder {
	i.returning = columns
	return i
}

func (i *InsertBuilder) ToSQL() (string, []any, error) {
	if i.err != nil {
		return "", nil, i.err
	}
	if strings.TrimSpace(i.table) == "" || len(i.columns) == 0 {
		return "", nil, fmt.Errorf("%w: insert needs a table and columns", ErrIncomplete)
	}

	var (
		sb strings.Builder
		b  binder
	)
	placeholders := make([]string, len(i.values))
	for idx, v := range i.values {
		placeholders[idx] = b.bind(v)
	}
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES (%s)", i.table, strings.Join(i.columns, ", "), strings.Join(placeholders, ", "))
	if len(i.conflictKeys) > 0 {
		fmt.Fprintf(&sb, " ON CONFLICT (%s) DO NOTHING", strings.Join(i.conflictKeys, ", "))
	}
	writeReturning(&sb, i.returning)
	return sb.String(), b.args, nil
}

type assignment struct {
	column string
	value  any
	raw    string
}

type UpdateBuilder struct {
	table     string
	sets      []assignment
	where     []Condition
	returning []string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (u *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, value: value})
	return u
}

// SetRaw assigns an SQL expression verbatim, such as "version + 1".
func (u *UpdateBuilder) SetRaw(column, expr string) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, raw: expr})
	return u
}

func (u *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	u.where = append(u.where, conds...)
	return u
}

func (u *UpdateBuilder) Returning(columns ...string) *UpdateBuilder {
	u.returning = columns
	return u
}

func (u *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(u.table) == "" || len(u.sets) == 0 {
		return "", nil, fmt.Errorf("%w: update needs a table and assignments", ErrIncomplete)
	}
	// An unconditioned update would rewrite every stored document.
	if len(u.where) == 0 {
		return "", nil, fmt.Errorf("%w: update without where", ErrIncomplete)
	}

	var (
		sb strings.Builder
		b  binder
	)
	sb.WriteString("UPDATE ")
	sb.WriteString(u.table)
	sb.WriteString(" SET ")
	for idx, a := range u.sets {
		if idx > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.column)
		sb.WriteString(" = ")
		if a.raw != "" {
			sb.WriteString(a.raw)
		} else {
			sb.WriteString(b.bind(a.value))
		}
	}
	writeWhere(&sb, &b, u.where)
	writeReturning(&sb, u.returning)
	return sb.String(), b.args, nil
}

func taggedColumns(model any) ([]string, []any, error) {
	v := reflect.ValueOf(model)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil, fmt.Errorf("%w: nil model", ErrIncomplete)
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("%w: model is %s, not a struct", ErrIncomplete, v.Kind())
	}

	t := v.Type()
	var (
		cols []string
		vals []any
	)
	for idx := range t.NumField() {
		field := t.Field(idx)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		name = strings.TrimSpace(name)
		if name == "" || name == "-" {
			continue
		}
		cols = append(cols, name)
		vals = append(vals, v.Field(idx).Interface())
	}
	return cols, vals, nil
}
