package query

import (
	"bytes"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lookup resolves a dotted path inside a decoded document. Missing paths
// resolve to nil.
func Lookup(doc bson.M, path string) interface{} {
	var cur interface{} = doc
	for _, key := range strings.Split(path, ".") {
		switch d := cur.(type) {
		case bson.M:
			cur = d[key]
		case map[string]interface{}:
			cur = d[key]
		case bson.D:
			cur = nil
			for _, e := range d {
				if e.Key == key {
					cur = e.Value
					break
				}
			}
		default:
			return nil
		}
	}
	return cur
}

// ToFloat converts any BSON numeric value to float64.
func ToFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// typeRank follows the MongoDB cross-type comparison order.
func typeRank(v interface{}) int {
	if _, ok := ToFloat(v); ok {
		return 1
	}
	switch v.(type) {
	case nil:
		return 0
	case string:
		return 2
	case bson.M, bson.D, map[string]interface{}:
		return 3
	case bson.A, []interface{}:
		return 4
	case primitive.ObjectID:
		return 5
	case bool:
		return 6
	case primitive.DateTime, time.Time:
		return 7
	}
	return 8
}

// Compare orders two BSON values: negative when a sorts first, zero when
// equal.
func Compare(a, b interface{}) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return ra - rb
	}
	switch ra {
	case 0:
		return 0
	case 1:
		fa, _ := ToFloat(a)
		fb, _ := ToFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	case 2:
		return strings.Compare(a.(string), b.(string))
	case 5:
		ia, ib := a.(primitive.ObjectID), b.(primitive.ObjectID)
		return bytes.Compare(ia[:], ib[:])
	case 6:
		ba, bb := a.(bool), b.(bool)
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	case 7:
		ta, tb := toTime(a), toTime(b)
		return ta.Compare(tb)
	}
	if reflect.DeepEqual(a, b) {
		return 0
	}
	return 1
}

func toTime(v interface{}) time.Time {
	switch t := v.(type) {
	case primitive.DateTime:
		return t.Time()
	case time.Time:
		return t
	}
	return time.Time{}
}
