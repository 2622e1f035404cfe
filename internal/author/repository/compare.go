package repository

import (
	"bytes"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// typeRank follows the server's cross-type sort order. Missing fields sort
// with null.
func typeRank(v interface{}) int {
	switch v.(type) {
	case primitive.MinKey:
		return 0
	case nil, primitive.Null, primitive.Undefined:
		return 1
	case int, int32, int64, float64, primitive.Decimal128:
		return 2
	case string, primitive.Symbol:
		return 3
	case bson.D, bson.M:
		return 4
	case bson.A, []interface{}:
		return 5
	case primitive.Binary:
		return 6
	case primitive.ObjectID:
		return 7
	case bool:
		return 8
	case primitive.DateTime, time.Time:
		return 9
	case primitive.Timestamp:
		return 10
	case primitive.Regex:
		return 11
	case primitive.MaxKey:
		return 13
	default:
		return 12
	}
}

// compareValues orders two BSON values ascending. Arrays compare element by
// element and embedded documents field by field in stored order.
func compareValues(a, b interface{}) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return cmpInt(int64(ra), int64(rb))
	}
	switch x := a.(type) {
	case int, int32, int64, float64, primitive.Decimal128:
		return cmpFloat(toFloat(x), toFloat(b))
	case string:
		return strings.Compare(x, toString(b))
	case primitive.Symbol:
		return strings.Compare(string(x), toString(b))
	case bson.D:
		return compareDocs(x, toD(b))
	case bson.M:
		return compareDocs(toD(x), toD(b))
	case bson.A:
		return compareArrays(x, toA(b))
	case []interface{}:
		return compareArrays(x, toA(b))
	case primitive.Binary:
		y := b.(primitive.Binary)
		if len(x.Data) != len(y.Data) {
			return cmpInt(int64(len(x.Data)), int64(len(y.Data)))
		}
		if x.Subtype != y.Subtype {
			return cmpInt(int64(x.Subtype), int64(y.Subtype))
		}
		return bytes.Compare(x.Data, y.Data)
	case primitive.ObjectID:
		y := b.(primitive.ObjectID)
		return bytes.Compare(x[:], y[:])
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	case primitive.DateTime, time.Time:
		return cmpInt(toMillis(x), toMillis(b))
	case primitive.Timestamp:
		y := b.(primitive.Timestamp)
		if x.T != y.T {
			return cmpInt(int64(x.T), int64(y.T))
		}
		return cmpInt(int64(x.I), int64(y.I))
	}
	return 0
}

func compareDocs(a, b bson.D) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := cmpInt(int64(typeRank(a[i].Value)), int64(typeRank(b[i].Value))); c != 0 {
			return c
		}
		if c := strings.Compare(a[i].Key, b[i].Key); c != 0 {
			return c
		}
		if c := compareValues(a[i].Value, b[i].Value); c != 0 {
			return c
		}
	}
	return cmpInt(int64(len(a)), int64(len(b)))
}

func compareArrays(a, b []interface{}) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareValues(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmpInt(int64(len(a)), int64(len(b)))
}

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case float64:
		return x
	case primitive.Decimal128:
		if f, err := strconv.ParseFloat(x.String(), 64); err == nil {
			return f
		}
	}
	return math.NaN()
}

func toString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case primitive.Symbol:
		return string(x)
	}
	return ""
}

func toD(v interface{}) bson.D {
	switch x := v.(type) {
	case bson.D:
		return x
	case bson.M:
		// maps carry no order; fall back to sorted keys
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(bson.D, 0, len(x))
		for _, k := range keys {
			out = append(out, bson.E{Key: k, Value: x[k]})
		}
		return out
	}
	return nil
}

func toA(v interface{}) []interface{} {
	switch x := v.(type) {
	case bson.A:
		return x
	case []interface{}:
		return x
	}
	return nil
}

func toMillis(v interface{}) int64 {
	switch x := v.(type) {
	case primitive.DateTime:
		return int64(x)
	case time.Time:
		return x.UnixMilli()
	}
	return 0
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// cmpFloat sorts NaN below every other number, as the server does.
func cmpFloat(a, b float64) int {
	an, bn := math.IsNaN(a), math.IsNaN(b)
	switch {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
