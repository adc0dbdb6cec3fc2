package db

import (
	"strings"
	"testing"
)

func TestIndexBuilder_Simple(t *testing.T) {
	idx := NewIndex("dxd:docket:idx").
		OnJSON().
		Prefix("dxd:docket:").
		Tag("$.court_id", "court_id").
		SortableNumeric("$.date_filed", "date_filed").
		MustBuild()

	if err := idx.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if idx.Name != "dxd:docket:idx" {
		t.Errorf("name = %q, want dxd:docket:idx", idx.Name)
	}
	if idx.StorageType != StorageJSON {
		t.Errorf("storage = %q, want JSON", idx.StorageType)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("fields count = %d, want 2", len(idx.Fields))
	}
	if idx.Fields[0].Alias != "court_id" || idx.Fields[0].Type != IndexFieldTag {
		t.Errorf("field[0] = %+v, want court_id TAG", idx.Fields[0])
	}
	if idx.Fields[1].Alias != "date_filed" || !idx.Fields[1].Sortable {
		t.Errorf("field[1] = %+v, want date_filed NUMERIC SORTABLE", idx.Fields[1])
	}
}

func TestIndexBuilder_DefaultStorage(t *testing.T) {
	idx := NewIndex("kv-idx").
		Prefix("k:").
		Tag("category", "").
		MustBuild()

	if idx.StorageType != StorageHash {
		t.Errorf("storage = %q, want HASH", idx.StorageType)
	}
}

func TestIndexBuilder_MultiplePrefixes(t *testing.T) {
	idx := NewIndex("multi-idx").
		Prefix("a:", "b:", "c:").
		Tag("x", "").
		MustBuild()

	if len(idx.Prefixes) != 3 {
		t.Errorf("prefix count = %d, want 3", len(idx.Prefixes))
	}
}

func TestIndexBuilder_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder func() (*IndexDefinition, error)
		wantErr string
	}{
		{
			name: "empty name",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("").Tag("x", "").Build()
			},
			wantErr: "index name is required",
		},
		{
			name: "no fields",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx").Build()
			},
			wantErr: "at least one field",
		},
		{
			name: "invalid characters",
			builder: func() (*IndexDefinition, error) {
				return NewIndex("idx with spaces").Tag("x", "").Build()
			},
			wantErr: "invalid characters",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got error %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx := NewIndex("my-idx").
		OnJSON().
		Prefix("doc:").
		Tag("$.cat", "cat").
		Text("$.body", "body").
		MustBuild()

	s := idx.String()
	if !strings.HasPrefix(s, "FT.CREATE ") {
		t.Errorf("expected FT.CREATE prefix, got %q", s)
	}
	if !strings.Contains(s, "my-idx") {
		t.Error("missing index name in string output")
	}
}

func TestIndexDefinition_DuplicateFields(t *testing.T) {
	idx := &IndexDefinition{
		Name: "dup-idx",
		Fields: []IndexField{
			{Name: "field1", Type: IndexFieldTag},
			{Name: "field1", Type: IndexFieldNumeric},
		},
	}

	if err := idx.Validate(); err == nil {
		t.Fatal("expected error for duplicate fields")
	}
}

func TestEscapeTag(t *testing.T) {
	got := EscapeTag("N.D. Cal.")
	want := `N\.D\.\ Cal\.`
	if got != want {
		t.Errorf("EscapeTag = %q, want %q", got, want)
	}
}

func TestEscapeTerm(t *testing.T) {
	input := `foo "bar" @field {x}`
	got := EscapeTerm(input)
	want := `foo \"bar\" \@field \{x\}`
	if got != want {
		t.Errorf("EscapeTerm = %q, want %q", got, want)
	}
}
