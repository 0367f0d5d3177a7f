package names

import (
	"reflect"
	"testing"

	"github.com/atjproject/lawcat/internal/work"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []work.Author
	}{
		{
			name: "two part name",
			raw:  "Knut Rodhe",
			want: []work.Author{{Given: "Knut", Family: "Rodhe"}},
		},
		{
			name: "conjunction och",
			raw:  "Hugo Tiberg och Dan Lennhammer",
			want: []work.Author{
				{Given: "Hugo", Family: "Tiberg"},
				{Given: "Dan", Family: "Lennhammer"},
			},
		},
		{
			name: "comma list with and",
			raw:  "Jan Hellner, Richard Hager and Annina H Persson",
			want: []work.Author{
				{Given: "Jan", Family: "Hellner"},
				{Given: "Richard", Family: "Hager"},
				{Given: "Annina H", Family: "Persson"},
			},
		},
		{
			name: "multiple given names",
			raw:  "Antonina Bakardjieva Engelbrekt",
			want: []work.Author{{Given: "Antonina Bakardjieva", Family: "Engelbrekt"}},
		},
		{
			name: "single token",
			raw:  "Anonymus",
			want: []work.Author{{Given: "", Family: "Anonymus"}},
		},
		{
			name: "ampersand and semicolon",
			raw:  "Bertil Bengtsson & Jan Kleineman; Erland Strömbäck",
			want: []work.Author{
				{Given: "Bertil", Family: "Bengtsson"},
				{Given: "Jan", Family: "Kleineman"},
				{Given: "Erland", Family: "Strömbäck"},
			},
		},
		{
			name: "extra whitespace",
			raw:  "  Knut   Rodhe  ",
			want: []work.Author{{Given: "Knut", Family: "Rodhe"}},
		},
		{
			name: "blank",
			raw:  "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParse_MalformedNeverDropsAuthor(t *testing.T) {
	inputs := []string{
		", , och",
		"och",
		";;&",
		",",
	}
	for _, raw := range inputs {
		got := Parse(raw)
		if len(got) != 1 {
			t.Errorf("Parse(%q) returned %d authors, want 1 fallback author", raw, len(got))
			continue
		}
		if got[0].Family == "" {
			t.Errorf("Parse(%q) fallback has empty family", raw)
		}
	}
}

func TestParse_PreservesOrder(t *testing.T) {
	got := Families(Parse("C Cee, A Aye och B Bee"))
	want := []string{"Cee", "Aye", "Bee"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Families(Parse()) = %v, want %v", got, want)
	}
}

func TestParseInverted(t *testing.T) {
	tests := []struct {
		heading string
		want    work.Author
	}{
		{"Rodhe, Knut, 1909-1999", work.Author{Given: "Knut", Family: "Rodhe"}},
		{"Lindskog, Stefan, 1951-", work.Author{Given: "Stefan", Family: "Lindskog"}},
		{"Tiberg, Hugo", work.Author{Given: "Hugo", Family: "Tiberg"}},
		{"Knut Rodhe", work.Author{Given: "Knut", Family: "Rodhe"}},
		{"Sverige. Justitiedepartementet", work.Author{Given: "Sverige.", Family: "Justitiedepartementet"}},
		{"", work.Author{}},
	}
	for _, tt := range tests {
		if got := ParseInverted(tt.heading); got != tt.want {
			t.Errorf("ParseInverted(%q) = %+v, want %+v", tt.heading, got, tt.want)
		}
	}
}
