// pkg/glacier/serialize_test.go

package glacier

import (
	"encoding/json"
	"testing"
)

func TestSerializeFields(t *testing.T) {
	l := newList(t, 10)
	for i := 0; i < 15; i++ {
		err := l.Append(Record{
			"id":     float64(i),
			"name":   "item",
			"count":  float64(i * 2),
			"active": true,
			"tags":   []interface{}{"a", "b"},
			"meta":   map[string]interface{}{"depth": float64(1)},
		})
		if err != nil {
			t.Fatalf("append %d: %s", i, err)
		}
	}

	if err := l.Map(SerializeFields()); err != nil {
		t.Fatalf("map: %s", err)
	}

	// one record from the flushed chunk, one from the tail
	for _, i := range []int{4, 12} {
		r, err := l.Get(i)
		if err != nil {
			t.Fatalf("get %d: %s", i, err)
		}
		// scalars stay as they are
		if r["name"] != "item" {
			t.Fatalf("string field rewritten: %v", r["name"])
		}
		if _, ok := r["count"].(float64); !ok {
			t.Fatalf("numeric field rewritten: %v", r["count"])
		}
		// structured values become their JSON text
		if r["active"] != "true" {
			t.Fatalf("bool not serialized: %v", r["active"])
		}
		tags, ok := r["tags"].(string)
		if !ok {
			t.Fatalf("list not serialized: %v", r["tags"])
		}
		var decoded []string
		if err := json.Unmarshal([]byte(tags), &decoded); err != nil || len(decoded) != 2 {
			t.Fatalf("serialized list does not decode: %q", tags)
		}
		meta, ok := r["meta"].(string)
		if !ok {
			t.Fatalf("map not serialized: %v", r["meta"])
		}
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(meta), &m); err != nil || m["depth"] != float64(1) {
			t.Fatalf("serialized map does not decode: %q", meta)
		}
	}
}

func TestSerializeFieldsIdempotent(t *testing.T) {
	fn := SerializeFields()
	r := fn(Record{"active": true})
	r = fn(r)
	if r["active"] != "true" {
		t.Fatalf("second pass changed the field: %v", r["active"])
	}
}
