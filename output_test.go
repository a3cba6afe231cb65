package gotfm

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "assemblies.txt")

	if err := WriteList(path, []string{"a.dll", "b.dll"}, Overwrite); err != nil {
		t.Fatalf("WriteList(Overwrite) error = %v", err)
	}
	if err := WriteList(path, []string{"c.dll"}, Append); err != nil {
		t.Fatalf("WriteList(Append) error = %v", err)
	}
	assertContent(t, path, "a.dll\nb.dll\nc.dll\n")

	if err := WriteList(path, []string{"d.dll"}, Overwrite); err != nil {
		t.Fatalf("WriteList(Overwrite) error = %v", err)
	}
	assertContent(t, path, "d.dll\n")

	if err := WriteList(path, nil, FileMode(7)); err == nil {
		t.Error("WriteList() with unknown mode expected error")
	}
}

func TestWriteList_AppendCreates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.txt")
	if err := WriteList(path, []string{"x.dll"}, Append); err != nil {
		t.Fatalf("WriteList(Append) error = %v", err)
	}
	assertContent(t, path, "x.dll\n")
}

func TestParseFileMode(t *testing.T) {
	tests := []struct {
		in      string
		want    FileMode
		wantErr bool
	}{
		{"Overwrite", Overwrite, false},
		{"append", Append, false},
		{" APPEND ", Append, false},
		{"truncate", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFileMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFileMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseFileMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if Append.String() != "Append" || Overwrite.String() != "Overwrite" {
		t.Errorf("String() = %q, %q", Append, Overwrite)
	}
}

func assertContent(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != want {
		t.Errorf("content = %q, want %q", data, want)
	}
}
