// Package storetest provides an in-memory store.Collection for tests. It
// understands the operator subset the repositories actually issue: $set,
// $inc, $addToSet, $pull and $push updates; equality, $in, $nin, $lt, $gt,
// $ne, $exists and $or filters; single-key sorts and limits.
package storetest

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/irisvest/backend/internal/store"
)

// Collection is an in-memory implementation of store.Collection. Documents
// are kept in insertion order, mirroring Mongo's natural order.
type Collection struct {
	mu   sync.Mutex
	docs []bson.M
}

// NewCollection returns an empty in-memory collection.
func NewCollection() *Collection {
	return &Collection{}
}

var _ store.Collection = (*Collection)(nil)

func toDoc(v any) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeInto(doc bson.M, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func (c *Collection) InsertOne(_ context.Context, doc any) error {
	m, err := toDoc(doc)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, m)
	return nil
}

func (c *Collection) InsertMany(ctx context.Context, docs []any) error {
	for _, doc := range docs {
		if err := c.InsertOne(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collection) FindOne(_ context.Context, filter any, out any) error {
	f, err := toFilter(filter)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range c.docs {
		if matches(doc, f) {
			return decodeInto(doc, out)
		}
	}
	return mongo.ErrNoDocuments
}

func (c *Collection) Find(_ context.Context, filter any, out any, opts ...*options.FindOptions) error {
	f, err := toFilter(filter)
	if err != nil {
		return err
	}
	c.mu.Lock()
	var matched []bson.M
	for _, doc := range c.docs {
		if matches(doc, f) {
			matched = append(matched, doc)
		}
	}
	c.mu.Unlock()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.Sort != nil {
			sortDocs(matched, opt.Sort)
		}
		if opt.Limit != nil && *opt.Limit > 0 && int64(len(matched)) > *opt.Limit {
			matched = matched[:*opt.Limit]
		}
	}

	outVal := reflect.ValueOf(out)
	if outVal.Kind() != reflect.Ptr || outVal.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("storetest: Find out must be a pointer to slice, got %T", out)
	}
	slice := reflect.MakeSlice(outVal.Elem().Type(), 0, len(matched))
	elemType := outVal.Elem().Type().Elem()
	for _, doc := range matched {
		elem := reflect.New(elemType)
		if err := decodeInto(doc, elem.Interface()); err != nil {
			return err
		}
		slice = reflect.Append(slice, elem.Elem())
	}
	outVal.Elem().Set(slice)
	return nil
}

func (c *Collection) UpdateOne(_ context.Context, filter, update any) (*mongo.UpdateResult, error) {
	return c.update(filter, update, false)
}

func (c *Collection) UpdateMany(_ context.Context, filter, update any) (*mongo.UpdateResult, error) {
	return c.update(filter, update, true)
}

func (c *Collection) update(filter, update any, many bool) (*mongo.UpdateResult, error) {
	f, err := toFilter(filter)
	if err != nil {
		return nil, err
	}
	u, err := toFilter(update)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	res := &mongo.UpdateResult{}
	for _, doc := range c.docs {
		if !matches(doc, f) {
			continue
		}
		res.MatchedCount++
		if applyUpdate(doc, u) {
			res.ModifiedCount++
		}
		if !many {
			break
		}
	}
	return res, nil
}

func (c *Collection) FindOneAndUpdate(_ context.Context, filter, update any, out any) error {
	f, err := toFilter(filter)
	if err != nil {
		return err
	}
	u, err := toFilter(update)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range c.docs {
		if matches(doc, f) {
			applyUpdate(doc, u)
			return decodeInto(doc, out)
		}
	}
	return mongo.ErrNoDocuments
}

func (c *Collection) CountDocuments(_ context.Context, filter any) (int64, error) {
	f, err := toFilter(filter)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, doc := range c.docs {
		if matches(doc, f) {
			n++
		}
	}
	return n, nil
}

// toFilter accepts bson.M or anything map-shaped and returns it as bson.M
// without a marshal round-trip, so filter values keep their Go types.
func toFilter(v any) (bson.M, error) {
	switch f := v.(type) {
	case bson.M:
		return f, nil
	case map[string]any:
		return bson.M(f), nil
	case nil:
		return bson.M{}, nil
	default:
		return nil, fmt.Errorf("storetest: unsupported filter type %T", v)
	}
}

// norm canonicalizes values for comparison across the bson round-trip:
// custom string types become string, all numbers become float64, times
// become unix milliseconds, slices become []any.
func norm(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case primitive.ObjectID:
		return t
	case primitive.DateTime:
		return float64(t)
	case time.Time:
		return float64(t.UnixMilli())
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = norm(e)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = norm(e)
		}
		return out
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = norm(rv.Index(i).Interface())
		}
		return out
	case reflect.Ptr:
		if rv.IsNil() {
			return nil
		}
		return norm(rv.Elem().Interface())
	}
	return v
}

func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(norm(a), norm(b))
}

// fieldEqual implements Mongo equality: an array field matches when any of
// its elements equals the filter value.
func fieldEqual(fieldVal, filterVal any) bool {
	if arr, ok := norm(fieldVal).([]any); ok {
		if _, filterIsArr := norm(filterVal).([]any); !filterIsArr {
			for _, e := range arr {
				if reflect.DeepEqual(e, norm(filterVal)) {
					return true
				}
			}
			return false
		}
	}
	return valuesEqual(fieldVal, filterVal)
}

func asList(v any) []any {
	if l, ok := norm(v).([]any); ok {
		return l
	}
	return nil
}

func compareValues(a, b any) (int, bool) {
	na, nb := norm(a), norm(b)
	switch x := na.(type) {
	case float64:
		y, ok := nb.(float64)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		default:
			return 0, true
		}
	case string:
		y, ok := nb.(string)
		if !ok {
			return 0, false
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		default:
			return 0, true
		}
	case primitive.ObjectID:
		y, ok := nb.(primitive.ObjectID)
		if !ok {
			return 0, false
		}
		return bytes.Compare(x[:], y[:]), true
	}
	return 0, false
}

func matches(doc bson.M, filter bson.M) bool {
	for key, cond := range filter {
		switch key {
		case "$or":
			matched := false
			for _, sub := range toFilterList(cond) {
				if matches(doc, sub) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		case "$and":
			for _, sub := range toFilterList(cond) {
				if !matches(doc, sub) {
					return false
				}
			}
		default:
			fieldVal, exists := doc[key]
			if ops, ok := operatorMap(cond); ok {
				if !matchOps(fieldVal, exists, ops) {
					return false
				}
			} else {
				if !exists || !fieldEqual(fieldVal, cond) {
					return false
				}
			}
		}
	}
	return true
}

func toFilterList(v any) []bson.M {
	var out []bson.M
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return nil
	}
	for i := 0; i < rv.Len(); i++ {
		if f, err := toFilter(rv.Index(i).Interface()); err == nil {
			out = append(out, f)
		}
	}
	return out
}

func operatorMap(v any) (bson.M, bool) {
	m, err := toFilter(v)
	if err != nil || len(m) == 0 {
		return nil, false
	}
	for k := range m {
		if len(k) == 0 || k[0] != '$' {
			return nil, false
		}
	}
	return m, true
}

func matchOps(fieldVal any, exists bool, ops bson.M) bool {
	for op, arg := range ops {
		switch op {
		case "$exists":
			want, _ := arg.(bool)
			if exists != want {
				return false
			}
		case "$eq":
			if !exists || !fieldEqual(fieldVal, arg) {
				return false
			}
		case "$ne":
			if exists && fieldEqual(fieldVal, arg) {
				return false
			}
		case "$in":
			if !exists {
				return false
			}
			found := false
			for _, candidate := range asList(arg) {
				if fieldEqual(fieldVal, candidate) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case "$nin":
			if exists {
				for _, candidate := range asList(arg) {
					if fieldEqual(fieldVal, candidate) {
						return false
					}
				}
			}
		case "$lt":
			cmp, ok := compareValues(fieldVal, arg)
			if !exists || !ok || cmp >= 0 {
				return false
			}
		case "$gt":
			cmp, ok := compareValues(fieldVal, arg)
			if !exists || !ok || cmp <= 0 {
				return false
			}
		default:
			panic(fmt.Sprintf("storetest: unsupported filter operator %q", op))
		}
	}
	return true
}

func applyUpdate(doc bson.M, update bson.M) bool {
	modified := false
	for op, arg := range update {
		fields, err := toFilter(arg)
		if err != nil {
			panic(fmt.Sprintf("storetest: unsupported update argument %T", arg))
		}
		switch op {
		case "$set":
			for k, v := range fields {
				if cur, ok := doc[k]; !ok || !valuesEqual(cur, v) {
					doc[k] = roundTrip(v)
					modified = true
				}
			}
		case "$inc":
			for k, v := range fields {
				delta, _ := norm(v).(float64)
				cur, _ := norm(doc[k]).(float64)
				doc[k] = int64(cur + delta)
				if delta != 0 {
					modified = true
				}
			}
		case "$addToSet":
			for k, v := range fields {
				arr := asList(doc[k])
				found := false
				for _, e := range arr {
					if reflect.DeepEqual(e, norm(v)) {
						found = true
						break
					}
				}
				if !found {
					doc[k] = append(docArray(doc[k]), roundTrip(v))
					modified = true
				}
			}
		case "$pull":
			for k, v := range fields {
				cur := docArray(doc[k])
				kept := cur[:0]
				for _, e := range cur {
					if !valuesEqual(e, v) {
						kept = append(kept, e)
					}
				}
				if len(kept) != len(cur) {
					doc[k] = kept
					modified = true
				}
			}
		case "$push":
			for k, v := range fields {
				doc[k] = append(docArray(doc[k]), roundTrip(v))
				modified = true
			}
		default:
			panic(fmt.Sprintf("storetest: unsupported update operator %q", op))
		}
	}
	return modified
}

func docArray(v any) primitive.A {
	if v == nil {
		return primitive.A{}
	}
	if a, ok := v.(primitive.A); ok {
		return a
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice {
		out := make(primitive.A, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = rv.Index(i).Interface()
		}
		return out
	}
	return primitive.A{v}
}

// roundTrip converts an update value into the representation a bson decode
// would produce, so later reads see the same shapes real Mongo returns.
func roundTrip(v any) any {
	m, err := toDoc(bson.M{"v": v})
	if err != nil {
		return v
	}
	return m["v"]
}

func sortDocs(docs []bson.M, sortSpec any) {
	var key string
	dir := 1
	switch s := sortSpec.(type) {
	case bson.D:
		if len(s) == 0 {
			return
		}
		key = s[0].Key
		if d, ok := norm(s[0].Value).(float64); ok && d < 0 {
			dir = -1
		}
	case bson.M:
		for k, v := range s {
			key = k
			if d, ok := norm(v).(float64); ok && d < 0 {
				dir = -1
			}
		}
	default:
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		cmp, ok := compareValues(docs[i][key], docs[j][key])
		if !ok {
			return false
		}
		if dir < 0 {
			return cmp > 0
		}
		return cmp < 0
	})
}
