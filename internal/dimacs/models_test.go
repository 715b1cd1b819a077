package dimacs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWriteModel_format(t *testing.T) {
	file := filepath.Join(t.TempDir(), "model.out")
	if err := WriteModel(file, []bool{true, false, true}); err != nil {
		t.Fatalf("WriteModel(): want no error, got %s", err)
	}

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("reading model file: %s", err)
	}
	want := "1 : 1\n2 : 0\n3 : 1\n"
	if got := string(data); got != want {
		t.Errorf("model file: got %q, want %q", got, want)
	}
}

func TestWriteModel_roundTrip(t *testing.T) {
	models := [][]bool{
		{},
		{true},
		{false, false, true, true, false},
	}

	for _, model := range models {
		file := filepath.Join(t.TempDir(), "model.out")
		if err := WriteModel(file, model); err != nil {
			t.Fatalf("WriteModel(%v): want no error, got %s", model, err)
		}
		got, err := ReadModel(file)
		if err != nil {
			t.Fatalf("ReadModel(%v): want no error, got %s", model, err)
		}
		if diff := cmp.Diff(model, got); diff != "" {
			t.Errorf("round trip mismatch (-want, +got):\n%s", diff)
		}
	}
}

func TestReadModel_malformed(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "missing separator", content: "1 1\n"},
		{name: "bad value", content: "1 : 2\n"},
		{name: "bad variable", content: "x : 1\n"},
		{name: "out of order", content: "2 : 1\n1 : 0\n"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			file := filepath.Join(t.TempDir(), "model.out")
			if err := os.WriteFile(file, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := ReadModel(file); err == nil {
				t.Errorf("ReadModel(): want error, got none")
			}
		})
	}
}
