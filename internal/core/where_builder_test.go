package core

import (
	"reflect"
	"testing"
)

func TestWhereBuilder_Empty(t *testing.T) {
	where, args := NewWhereBuilder().Build()
	if where != "" {
		t.Errorf("Build() clause = %q, want empty", where)
	}
	if args != nil {
		t.Errorf("Build() args = %v, want nil", args)
	}
}

func TestWhereBuilder_Conditions(t *testing.T) {
	tests := []struct {
		name      string
		build     func(*WhereBuilder)
		wantWhere string
		wantArgs  []interface{}
		wantNext  int
	}{
		{
			name:      "single equality",
			build:     func(w *WhereBuilder) { w.Add("status", "Pending") },
			wantWhere: ` WHERE "status" = $1`,
			wantArgs:  []interface{}{"Pending"},
			wantNext:  2,
		},
		{
			name:      "empty value skipped",
			build:     func(w *WhereBuilder) { w.Add("status", "").Add("succursale", "GDC") },
			wantWhere: ` WHERE "succursale" = $1`,
			wantArgs:  []interface{}{"GDC"},
			wantNext:  2,
		},
		{
			name: "search shares one parameter",
			build: func(w *WhereBuilder) {
				w.Add("succursale", "GDC").AddSearch("ref_1", []string{"reference", "designation"})
			},
			wantWhere: ` WHERE "succursale" = $1 AND ("reference" ILIKE $2 OR "designation" ILIKE $2)`,
			wantArgs:  []interface{}{"GDC", `%ref\_1%`},
			wantNext:  3,
		},
		{
			name: "range",
			build: func(w *WhereBuilder) {
				w.AddCompare("date_cde", ">=", "2024-01-01").AddCompare("date_cde", "<=", "2024-12-31")
			},
			wantWhere: ` WHERE "date_cde" >= $1 AND "date_cde" <= $2`,
			wantArgs:  []interface{}{"2024-01-01", "2024-12-31"},
			wantNext:  3,
		},
		{
			name:      "unknown operator ignored",
			build:     func(w *WhereBuilder) { w.AddCompare("id", "; DROP", 1) },
			wantWhere: "",
			wantArgs:  nil,
			wantNext:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWhereBuilder()
			tt.build(w)
			where, args := w.Build()
			if where != tt.wantWhere {
				t.Errorf("clause = %q, want %q", where, tt.wantWhere)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
			if got := w.NextArgIndex(); got != tt.wantNext {
				t.Errorf("NextArgIndex() = %d, want %d", got, tt.wantNext)
			}
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	if got := quoteIdentifier(`we"ird`); got != `"we""ird"` {
		t.Errorf("quoteIdentifier = %q", got)
	}
}
