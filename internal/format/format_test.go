package format

import "testing"

func TestParse(t *testing.T) {
	cases := map[string]Format{
		"png":   PNG,
		".DDS":  DDS,
		"Tga":   TGA,
		"JPEG":  JPEG,
		"jpg":   JPG,
		" .jpg": JPG,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("Parse(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := Parse("webp"); err == nil {
		t.Fatalf("expected error for webp")
	}
}

func TestJPEGAndJPGAreDistinct(t *testing.T) {
	if JPEG.Extension() == JPG.Extension() {
		t.Fatalf("JPEG and JPG must keep separate extensions")
	}
	if JPEG.IsContainer() || JPG.IsContainer() || !DDS.IsContainer() {
		t.Fatalf("only DDS is a container")
	}
}

func TestFromPath(t *testing.T) {
	if got := FromPath("a/b/c.DDS"); got != DDS {
		t.Fatalf("FromPath: got %v", got)
	}
	if got := FromPath("noext"); got != Unknown {
		t.Fatalf("FromPath without extension: got %v", got)
	}
	for _, f := range All {
		if !f.Valid() || f.Extension() == "" {
			t.Fatalf("%v should be valid with an extension", f)
		}
	}
}
