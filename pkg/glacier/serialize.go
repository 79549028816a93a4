// pkg/glacier/serialize.go

package glacier

import "encoding/json"

// SerializeFields returns a Map transform that rewrites structured
// field values (maps, slices and booleans) into their JSON text form,
// leaving scalars untouched. Useful before handing records to systems
// that only accept flat string fields.
func SerializeFields() func(Record) Record {
	return func(r Record) Record {
		for k, v := range r {
			switch v.(type) {
			case map[string]interface{}, Record, []interface{}, []Record, []map[string]interface{}, []string, bool:
				data, err := json.Marshal(v)
				if err != nil {
					logger.Warnf("serialize field %s: %s", k, err)
					continue
				}
				r[k] = string(data)
			}
		}
		return r
	}
}
