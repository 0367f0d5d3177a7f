package filename

import (
	"strings"
	"testing"

	"github.com/atjproject/lawcat/internal/work"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		rec  work.Record
		want string
	}{
		{
			name: "single author first edition",
			rec: work.Record{
				Title:    "Obligationsrätt",
				Authors:  []work.Author{{Given: "Knut", Family: "Rodhe"}},
				Year:     1956,
				WorkType: work.TypeBook,
			},
			want: "1956 - bok - Rodhe - Obligationsraett.pdf",
		},
		{
			name: "two authors with edition",
			rec: work.Record{
				Title: "Skuldebrev, växel och check",
				Authors: []work.Author{
					{Given: "Hugo", Family: "Tiberg"},
					{Given: "Dan", Family: "Lennhammer"},
				},
				Year:     1995,
				Edition:  7,
				WorkType: work.TypeBook,
			},
			want: "1995 - bok - Tiberg, Lennhammer - Skuldebrev, vaexel och check - 7uppl.pdf",
		},
		{
			name: "dissertation",
			rec: work.Record{
				Title:    "Prioritet och avtal",
				Authors:  []work.Author{{Given: "Jan", Family: "Gothlin"}},
				Year:     2023,
				WorkType: work.TypeDissertation,
			},
			want: "2023 - avh - Gothlin - Prioritet och avtal.pdf",
		},
		{
			name: "missing year and authors",
			rec:  work.Record{Title: "Festskrift till Jan Hellner", WorkType: work.TypeFestschrift},
			want: "0000 - festskrift - Okand - Festskrift till Jan Hellner.pdf",
		},
		{
			name: "edition one is not rendered",
			rec: work.Record{
				Title:    "Sakrätt",
				Authors:  []work.Author{{Family: "Undén"}},
				Year:     1927,
				Edition:  1,
				WorkType: work.TypeBook,
			},
			want: "1927 - bok - Unden - Sakraett.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.rec); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_IsASCII(t *testing.T) {
	rec := work.Record{
		Title:    "Ärvdabalken: en kommentar – del 1",
		Authors:  []work.Author{{Given: "Gösta", Family: "Walin"}, {Given: "Göran", Family: "Lind"}},
		Year:     2016,
		WorkType: work.TypeCommentary,
	}
	got := Render(rec)
	for _, r := range got {
		if r > 127 {
			t.Fatalf("Render() = %q contains non-ASCII rune %q", got, r)
		}
	}
	if strings.ContainsAny(got, ":/") {
		t.Errorf("Render() = %q contains unsafe characters", got)
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"Ärende  och   åtgärd", 80, "Aerende och atgaerd"},
		{"Straße", 80, "Strasse"},
		{"Ökad rättssäkerhet?", 80, "Oekad raettssaekerhet"},
		{"Förmögenhetsrätt", 8, "Foermoeg"},
		{"abc - def", 6, "abc"},
		{"  ", 80, ""},
		{"Crème brûlée", 80, "Creme brulee"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("Sanitize(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}

func TestRender_TitleTruncated(t *testing.T) {
	rec := work.Record{
		Title:    strings.Repeat("Lång titel ", 20),
		Authors:  []work.Author{{Family: "Rodhe"}},
		Year:     1956,
		WorkType: work.TypeBook,
	}
	got := Render(rec)
	parts := strings.Split(strings.TrimSuffix(got, ".pdf"), " - ")
	if len(parts) != 4 {
		t.Fatalf("Render() = %q, want 4 parts", got)
	}
	if len(parts[3]) > MaxTitleLength {
		t.Errorf("title part length = %d, want <= %d", len(parts[3]), MaxTitleLength)
	}
}
