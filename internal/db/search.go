package db

import "strings"

// TagFilter restricts a search to documents whose tag field matches any
// of the given values.
type TagFilter struct {
	Field string
	Any   []string
}

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filters      []TagFilter
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search. Distance is the
// raw __vector_score for KNN hits (cosine distance, lower is closer)
// and zero for list queries.
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}

// FilterQuery renders tag filters as an FT.SEARCH query string, "*" when
// no filters apply. Multiple filters AND together; values within one
// filter OR together ("@data_type:{Visa|Tax}").
func FilterQuery(filters []TagFilter) string {
	var parts []string
	for _, f := range filters {
		if f.Field == "" || len(f.Any) == 0 {
			continue
		}
		escaped := make([]string, len(f.Any))
		for i, v := range f.Any {
			escaped[i] = tagEscaper.Replace(v)
		}
		parts = append(parts, "@"+f.Field+":{"+strings.Join(escaped, "|")+"}")
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// tagEscaper escapes TAG syntax characters in filter values.
var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)
