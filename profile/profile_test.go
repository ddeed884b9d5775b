package profile

import (
	"strings"
	"testing"
)

var testRegistry = Registry{
	"record_id": func(c *Context) (any, error) { return c.RecordID, nil },
}

func TestLoad(t *testing.T) {
	data := []byte(`
type: source
fields:
  - name: id
    extractor: record_id
    required: true
  - name: type_s
    static: source
  - name: title_s
    tag: "245"
    subfield: a
`)
	p, err := Load(data, testRegistry)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Type != "source" || len(p.Fields) != 3 {
		t.Fatalf("loaded profile = %+v", p)
	}
	if p.Fields[0].Name != "id" || p.Fields[2].Tag != "245" {
		t.Fatalf("declaration order not preserved: %+v", p.Fields)
	}
}

func TestLoadRejects(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			"unknown extractor",
			"type: source\nfields:\n  - name: x\n    extractor: nope\n",
			"unknown extractor",
		},
		{
			"no value source",
			"type: source\nfields:\n  - name: x\n",
			"exactly one",
		},
		{
			"two value sources",
			"type: source\nfields:\n  - name: x\n    static: y\n    tag: \"100\"\n",
			"exactly one",
		},
		{
			"subfield without tag",
			"type: source\nfields:\n  - name: x\n    extractor: record_id\n    subfield: a\n",
			"without a tag",
		},
		{
			"missing type",
			"fields:\n  - name: x\n    static: y\n",
			"document type",
		},
		{
			"duplicate field",
			"type: source\nfields:\n  - name: x\n    static: y\n  - name: x\n    static: z\n",
			"twice",
		},
	}
	for _, c := range cases {
		_, err := Load([]byte(c.yaml), testRegistry)
		if err == nil {
			t.Errorf("%s: expected load failure", c.name)
			continue
		}
		if !strings.Contains(err.Error(), c.want) {
			t.Errorf("%s: error %q does not mention %q", c.name, err, c.want)
		}
	}
}
