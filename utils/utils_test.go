package utils

import "testing"

func TestRemoveFrontmatter(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "no frontmatter",
			in:   "# Title\n\nbody\n",
			want: "# Title\n\nbody\n",
		},
		{
			name: "strips block",
			in:   "---\ntitle: Doc\nauthor: someone\n---\n# Title\n",
			want: "# Title\n",
		},
		{
			name: "unterminated block stays",
			in:   "---\ntitle: Doc\n# Title\n",
			want: "---\ntitle: Doc\n# Title\n",
		},
		{
			name: "dashes mid-document stay",
			in:   "# Title\n---\nbody\n",
			want: "# Title\n---\nbody\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(RemoveFrontmatter([]byte(tt.in))); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsMarkdownFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"README.md", true},
		{"doc.markdown", true},
		{"NOTES.MKD", true},
		{"main.go", false},
		{"no-extension", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsMarkdownFile(tt.path); got != tt.want {
			t.Errorf("IsMarkdownFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestWrapCodeBlock(t *testing.T) {
	got := WrapCodeBlock("package main", ".go")
	want := "```go\npackage main\n```"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
