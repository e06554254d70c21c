package csvio

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips bom",
			in:   "\ufefftitle,calendar_date\n",
			want: "title,calendar_date",
		},
		{
			name: "crlf to lf",
			in:   "a,b\r\nc,d\r\n",
			want: "a,b\nc,d",
		},
		{
			name: "bare cr to lf",
			in:   "a,b\rc,d",
			want: "a,b\nc,d",
		},
		{
			name: "trailing blank lines dropped",
			in:   "a,b\nc,d\n\n   \n\t\n",
			want: "a,b\nc,d",
		},
		{
			name: "empty payload stays empty",
			in:   "",
			want: "",
		},
		{
			name: "invalid utf8 replaced",
			in:   "a\xffb",
			want: "a\ufffdb",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSniffDelimiter(t *testing.T) {
	tests := []struct {
		line string
		want rune
	}{
		{"title,calendar_date,time_slot", ','},
		{"title;calendar_date;time_slot", ';'},
		{"title\tcalendar_date\ttime_slot", '\t'},
		{"title", ','},
		// comma wins ties
		{"a,b;c", ','},
	}
	for _, tt := range tests {
		if got := sniffDelimiter(tt.line); got != tt.want {
			t.Errorf("sniffDelimiter(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}
