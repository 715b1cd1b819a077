package dimacs

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tobik/skua/sat"
)

var wantInstance = &Instance{
	Variables: 3,
	Clauses: [][]sat.Literal{
		{1, 2, 3},
		{1, 2, -3},
		{1, -2, 3},
		{-1, 2, 3},
		{-1, -2, 3},
		{-1, 2, -3},
		{1, -2, -3},
		{-1, -2, -3},
	},
}

func TestParseFile_cnf(t *testing.T) {
	got, err := ParseFile("testdata/test_instance.cnf", false)
	if err != nil {
		t.Fatalf("ParseFile(): want no error, got %s", err)
	}
	if diff := cmp.Diff(wantInstance, got); diff != "" {
		t.Errorf("ParseFile(): mismatch (-want, +got):\n%s", diff)
	}
}

func TestParseFile_gzip(t *testing.T) {
	got, err := ParseFile("testdata/test_instance.cnf.gz", true)
	if err != nil {
		t.Fatalf("ParseFile(): want no error, got %s", err)
	}
	if diff := cmp.Diff(wantInstance, got); diff != "" {
		t.Errorf("ParseFile(): mismatch (-want, +got):\n%s", diff)
	}
}

func TestParseFile_noFile(t *testing.T) {
	if _, err := ParseFile("", false); err == nil {
		t.Errorf("ParseFile(): want error, got none")
	}
}

func TestParseFile_notGzipFile(t *testing.T) {
	if _, err := ParseFile("testdata/test_instance.cnf", true); err == nil {
		t.Errorf("ParseFile(): want error, got none")
	}
}

func TestParse_satlibTrailer(t *testing.T) {
	got, err := ParseFile("testdata/satlib_trailer.cnf", false)
	if err != nil {
		t.Fatalf("ParseFile(): want no error, got %s", err)
	}
	want := &Instance{
		Variables: 3,
		Clauses:   [][]sat.Literal{{1, -2}, {2, 3}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseFile(): mismatch (-want, +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  *Instance
	}{
		{
			name:  "clause split over lines",
			input: "p cnf 3 1\n1\n-2\n3 0\n",
			want:  &Instance{Variables: 3, Clauses: [][]sat.Literal{{1, -2, 3}}},
		},
		{
			name:  "missing trailing zero",
			input: "p cnf 2 2\n1 2 0\n-1 -2\n",
			want:  &Instance{Variables: 2, Clauses: [][]sat.Literal{{1, 2}, {-1, -2}}},
		},
		{
			name:  "empty clause",
			input: "p cnf 2 2\n1 2 0\n0\n",
			want:  &Instance{Variables: 2, Clauses: [][]sat.Literal{{1, 2}, nil}},
		},
		{
			name:  "interior header whitespace",
			input: "p  cnf   2    1\n1 -2 0\n",
			want:  &Instance{Variables: 2, Clauses: [][]sat.Literal{{1, -2}}},
		},
		{
			name:  "comments and empty lines",
			input: "c hello\n\nc world\np cnf 1 1\n\nc mid\n1 0\n",
			want:  &Instance{Variables: 1, Clauses: [][]sat.Literal{{1}}},
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse(): want no error, got %s", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Parse(): mismatch (-want, +got):\n%s", diff)
			}
		})
	}
}

func TestParse_errors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "empty input", input: ""},
		{name: "missing header", input: "1 2 0\n"},
		{name: "truncated header", input: "p cnf 2\n"},
		{name: "wrong problem type", input: "p wcnf 2 1\n1 2 0\n"},
		{name: "non-numeric variable count", input: "p cnf two 1\n1 2 0\n"},
		{name: "non-numeric clause count", input: "p cnf 2 one\n1 2 0\n"},
		{name: "negative variable count", input: "p cnf -2 1\n1 2 0\n"},
		{name: "non-numeric literal", input: "p cnf 2 1\n1 x 0\n"},
		{name: "literal out of range", input: "p cnf 2 1\n1 3 0\n"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tc.input)); err == nil {
				t.Errorf("Parse(): want error, got none")
			}
		})
	}
}
