package metrics

import (
	"fmt"
	"path"
	"reflect"

	"go.opencensus.io/stats"
)

var (
	int64MeasureType   = reflect.TypeOf(&stats.Int64Measure{})
	float64MeasureType = reflect.TypeOf(&stats.Float64Measure{})
)

// fieldTags decorate the fields of a metrics struct:
//   - metric: the measure name. Fields without it are scanned as nested groups
//   - group: a path segment prepended to nested measure names
//   - unit: milliseconds, bytes or count (the default)
//   - description
//   - extraviews: additional aggregations, e.g. "sum,lastvalue"
//   - tags: the tag keys views are grouped by
type fieldTags struct {
	metric      string
	group       string
	unit        string
	description string
	views       []string
	groupings   []string
}

func parseTags(field reflect.StructField) fieldTags {
	return fieldTags{
		metric:      field.Tag.Get("metric"),
		group:       field.Tag.Get("group"),
		unit:        field.Tag.Get("unit"),
		description: field.Tag.Get("description"),
		views:       splitList(field.Tag.Get("extraviews")),
		groupings:   splitList(field.Tag.Get("tags")),
	}
}

// measureAdder allocates a measure for a field, or yields nil to leave the field unset
type measureAdder func(field interface{}, name, group string, tags fieldTags) interface{}

func sameType(a, b interface{}) bool {
	return reflect.TypeOf(a) == reflect.TypeOf(b)
}

// scanStruct walks a pointer to a struct, allocating the measure fields it declares
func scanStruct(parent string, adder measureAdder, m interface{}) {
	rv := reflect.ValueOf(m)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("metrics require a pointer to a struct, got: %T", m))
	}
	scanValue(parent, adder, rv.Elem())
}

func scanValue(parent string, adder measureAdder, v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		tags := parseTags(t.Field(i))
		group := path.Join(parent, tags.group)

		switch {
		case tags.metric == "" && field.Kind() == reflect.Struct:
			scanValue(group, adder, field)

		case tags.metric == "" && field.Kind() == reflect.Ptr && field.Type().Elem().Kind() == reflect.Struct && !isMeasure(field.Type()):
			if field.IsNil() {
				field.Set(reflect.New(field.Type().Elem()))
			}
			scanValue(group, adder, field.Elem())

		case tags.metric != "" && field.Kind() == reflect.Ptr:
			// the adder only inspects the type of the field
			if allocated := adder(field.Interface(), tags.metric, group, tags); allocated != nil {
				field.Set(reflect.ValueOf(allocated))
			}
		}
	}
}

func isMeasure(t reflect.Type) bool {
	return t == int64MeasureType || t == float64MeasureType
}
