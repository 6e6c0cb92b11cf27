package imageio

import (
	"strings"
	"testing"

	"github.com/plateworks/tavola/pkg/catalog"
)

const sampleCSV = `filename,site,type,depth
vessel_01,Kerameikos,amphora,2
vessel_02.png,Kerameikos,krater,
sherd_10,Agora,rim,10
`

func TestReadMetadata(t *testing.T) {
	table, err := ReadMetadata(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadMetadata() error = %v", err)
	}

	wantFields := []string{"site", "type", "depth"}
	if len(table.Fields) != len(wantFields) {
		t.Fatalf("Fields = %v, want %v", table.Fields, wantFields)
	}
	for i := range wantFields {
		if table.Fields[i] != wantFields[i] {
			t.Errorf("Fields[%d] = %q, want %q", i, table.Fields[i], wantFields[i])
		}
	}

	row := table.Lookup("vessel_01")
	if row == nil || row["site"] != "Kerameikos" || row["depth"] != "2" {
		t.Errorf("Lookup(vessel_01) = %v", row)
	}
}

func TestLookupExtensionAgnostic(t *testing.T) {
	table, err := ReadMetadata(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadMetadata() error = %v", err)
	}

	tests := []struct {
		name string
		key  string
		site string
	}{
		{"stem key, file with extension", "vessel_01.png", "Kerameikos"},
		{"extension key, bare name", "vessel_02", "Kerameikos"},
		{"extension key, other extension", "vessel_02.tif", "Kerameikos"},
		{"exact match", "sherd_10", "Agora"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := table.Lookup(tt.key)
			if row == nil || row["site"] != tt.site {
				t.Errorf("Lookup(%q) = %v, want site %q", tt.key, row, tt.site)
			}
		})
	}

	if row := table.Lookup("unknown.png"); row != nil {
		t.Errorf("Lookup(unknown) = %v, want nil", row)
	}
}

func TestReadMetadataRejectsDegenerate(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty", ""},
		{"key column only", "filename\na\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadMetadata(strings.NewReader(tt.csv)); err == nil {
				t.Error("ReadMetadata() accepted a degenerate table")
			}
		})
	}
}

func TestReadMetadataShortRows(t *testing.T) {
	table, err := ReadMetadata(strings.NewReader("filename,site,type\na.png,Agora\n"))
	if err != nil {
		t.Fatalf("ReadMetadata() error = %v", err)
	}
	row := table.Lookup("a.png")
	if row["site"] != "Agora" {
		t.Errorf("site = %q, want Agora", row["site"])
	}
	if row["type"] != "" {
		t.Errorf("type = %q, want empty for a short row", row["type"])
	}
}

func TestApply(t *testing.T) {
	table, err := ReadMetadata(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadMetadata() error = %v", err)
	}

	items := []catalog.ImageItem{
		{ID: "vessel_01.png"},
		{ID: "stranger.png"},
	}
	table.Apply(items)

	if items[0].Field("site") != "Kerameikos" {
		t.Errorf("metadata not applied: %v", items[0].Meta)
	}
	if items[1].Meta != nil {
		t.Errorf("unmatched item received metadata: %v", items[1].Meta)
	}
}
