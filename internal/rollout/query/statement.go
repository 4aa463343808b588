package query

import (
	"slices"
	"strconv"
	"strings"
)

// Shape tells the fetch layer how to execute a statement.
type Shape int

const (
	ShapeScalar Shape = iota
	ShapeRows
)

func (s Shape) String() string {
	if s == ShapeRows {
		return "rows"
	}
	return "scalar"
}

// Statement is an immutable SQL statement with positional arguments. The SQL text only ever
// contains static fragments and $n placeholders; every externally supplied value is in Args.
type Statement struct {
	name  string
	sql   string
	args  []any
	shape Shape
}

// Name identifies the statement template, for logs and metrics.
func (s Statement) Name() string { return s.name }

func (s Statement) SQL() string { return s.sql }

func (s Statement) Shape() Shape { return s.shape }

// Args returns a copy of the bound arguments in placeholder order.
func (s Statement) Args() []any { return slices.Clone(s.args) }

// builder assembles a statement from static fragments. Values only enter through bind.
type builder struct {
	name    string
	shape   Shape
	columns []string
	from    string
	where   []string
	groupBy []string
	orderBy []string
	args    []any
}

func (b *builder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *builder) build() Statement {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(b.columns, ", "))
	sb.WriteString("\n")
	sb.WriteString(b.from)
	if len(b.where) > 0 {
		sb.WriteString("\nWHERE ")
		sb.WriteString(strings.Join(b.where, "\n  AND "))
	}
	if len(b.groupBy) > 0 {
		sb.WriteString("\nGROUP BY ")
		sb.WriteString(strings.Join(b.groupBy, ", "))
	}
	if len(b.orderBy) > 0 {
		sb.WriteString("\nORDER BY ")
		sb.WriteString(strings.Join(b.orderBy, ", "))
	}
	return Statement{
		name:  b.name,
		sql:   sb.String(),
		args:  b.args,
		shape: b.shape,
	}
}
