package db

import "testing"

func TestFilterQuery(t *testing.T) {
	tests := []struct {
		name    string
		filters []TagFilter
		want    string
	}{
		{"empty", nil, "*"},
		{"single", []TagFilter{{Field: "tier", Any: []string{"free"}}}, "@tier:{free}"},
		{"multi_value", []TagFilter{{Field: "data_type", Any: []string{"Visa", "Tax"}}}, "@data_type:{Visa|Tax}"},
		{
			"combined",
			[]TagFilter{
				{Field: "tier", Any: []string{"premium"}},
				{Field: "data_type", Any: []string{"Visa"}},
			},
			"@tier:{premium} @data_type:{Visa}",
		},
		{"escaped", []TagFilter{{Field: "source", Any: []string{"cities.csv"}}}, `@source:{cities\.csv}`},
		{"skips_incomplete", []TagFilter{{Field: "tier"}, {Any: []string{"x"}}}, "*"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := FilterQuery(tc.filters); got != tc.want {
				t.Errorf("FilterQuery() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestIndexDefinitionValidate(t *testing.T) {
	valid := IndexDefinition{
		Name:     "nomadmatch:cities:idx",
		Prefixes: []string{"nomadmatch:cities:"},
		Fields: []IndexField{
			{Name: "tier", Type: IndexFieldTag},
			{Name: "__vector", Type: IndexFieldVector, VectorDim: 1536},
		},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name string
		def  IndexDefinition
	}{
		{"empty_name", IndexDefinition{Fields: []IndexField{{Name: "f"}}}},
		{"bad_name", IndexDefinition{Name: "bad name", Fields: []IndexField{{Name: "f"}}}},
		{"no_fields", IndexDefinition{Name: "idx"}},
		{"unnamed_field", IndexDefinition{Name: "idx", Fields: []IndexField{{}}}},
		{"duplicate_field", IndexDefinition{Name: "idx", Fields: []IndexField{{Name: "f"}, {Name: "f"}}}},
		{"vector_no_dim", IndexDefinition{Name: "idx", Fields: []IndexField{{Name: "v", Type: IndexFieldVector}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.def.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
