package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestContains_CaseInsensitiveSubstring(t *testing.T) {
	doc := bson.M{"name": "Groote Schuur Hospital"}

	for _, term := range []string{"groote", "SCHUUR", "hospital", "r Hos", ""} {
		assert.True(t, Contains("name", term).Match(doc), term)
	}
	assert.False(t, Contains("name", "clinic").Match(doc))
	assert.False(t, Contains("missing", "x").Match(doc))
}

func TestContains_EscapesMetacharacters(t *testing.T) {
	p := Contains("name", "St. John (East)")

	rx, ok := p.BSON()["name"].(bson.M)["$regex"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, `St\. John \(East\)`, rx.Pattern)
	assert.Equal(t, "i", rx.Options)

	assert.True(t, p.Match(bson.M{"name": "st. john (east) clinic"}))
	assert.False(t, p.Match(bson.M{"name": "Stx John xEastx"}))
}

func TestContains_ArrayField(t *testing.T) {
	doc := bson.M{"features": bson.A{"Pool", "Garden"}}
	assert.True(t, Contains("features", "gard").Match(doc))
	assert.False(t, Contains("features", "garage").Match(doc))
}

func TestAnd_Flattening(t *testing.T) {
	a := Contains("name", "a")
	b := Equals("bedrooms", 2)

	assert.Equal(t, bson.M{}, And().BSON())
	assert.Equal(t, a, And(nil, a))
	assert.Equal(t, bson.M{"$and": bson.A{a.BSON(), b.BSON()}}, And(And(a), And(b, nil)).BSON())
	assert.True(t, All().Match(bson.M{}))
}

func TestOr(t *testing.T) {
	p := Or(Contains("title", "sea"), Contains("location", "sea"))

	assert.Contains(t, p.BSON(), "$or")
	assert.True(t, p.Match(bson.M{"title": "Flat", "location": "Sea Point"}))
	assert.True(t, p.Match(bson.M{"title": "Seaview flat", "location": "Woodstock"}))
	assert.False(t, p.Match(bson.M{"title": "Flat", "location": "Woodstock"}))
	assert.True(t, Or().Match(bson.M{}))
}

func TestEquals_NumericKinds(t *testing.T) {
	p := Equals("bedrooms", 2)
	assert.True(t, p.Match(bson.M{"bedrooms": int32(2)}))
	assert.True(t, p.Match(bson.M{"bedrooms": int64(2)}))
	assert.True(t, p.Match(bson.M{"bedrooms": 2.0}))
	assert.False(t, p.Match(bson.M{"bedrooms": int32(3)}))
	assert.False(t, p.Match(bson.M{"bedrooms": "2"}))
	assert.False(t, p.Match(bson.M{}))
}

func TestBetween_Inclusive(t *testing.T) {
	lo, hi := 10000.0, 20000.0

	tests := []struct {
		name     string
		min, max *float64
		price    float64
		want     bool
	}{
		{"lower bound", &lo, &hi, 10000, true},
		{"upper bound", &lo, &hi, 20000, true},
		{"below", &lo, &hi, 9999.99, false},
		{"above", &lo, &hi, 20000.01, false},
		{"open max", &lo, nil, 1e9, true},
		{"open min", nil, &hi, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Between("price", tt.min, tt.max).Match(bson.M{"price": tt.price}))
		})
	}

	assert.Equal(t, bson.M{"price": bson.M{"$gte": lo}}, Between("price", &lo, nil).BSON())
	assert.Equal(t, All(), Between("price", nil, nil))
}

func TestIn_ArrayMembership(t *testing.T) {
	p := In("features", "pool", "parking")

	assert.Equal(t, bson.M{"features": bson.M{"$in": bson.A{"pool", "parking"}}}, p.BSON())
	assert.True(t, p.Match(bson.M{"features": bson.A{"garden", "parking"}}))
	assert.False(t, p.Match(bson.M{"features": bson.A{"garden"}}))
	assert.True(t, In("category", "budget").Match(bson.M{"category": "budget"}))
}

func TestLookup_DottedPath(t *testing.T) {
	doc := bson.M{
		"location": bson.M{"type": "Point"},
		"meta":     bson.D{{Key: "source", Value: "import"}},
	}
	assert.Equal(t, "Point", Lookup(doc, "location.type"))
	assert.Equal(t, "import", Lookup(doc, "meta.source"))
	assert.Nil(t, Lookup(doc, "location.type.x"))
	assert.Nil(t, Lookup(doc, "nope"))
}

func TestCompare_CrossType(t *testing.T) {
	assert.Less(t, Compare(nil, 1), 0)
	assert.Less(t, Compare(int32(1), "a"), 0)
	assert.Less(t, Compare("a", "b"), 0)
	assert.Equal(t, 0, Compare(int64(3), 3.0))
	assert.Less(t, Compare(false, true), 0)

	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	assert.Less(t, Compare(a, b), 0)
}
