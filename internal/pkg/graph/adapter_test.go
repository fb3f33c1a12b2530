package graph

import (
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type objectWrapper struct {
	Object map[string]any
}

type valueWrapper struct {
	Value neo4j.Node
}

type plainUser struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
}

func TestNormalizeShapes(t *testing.T) {
	node := neo4j.Node{ElementId: "4:x:1", Labels: []string{"User"}, Props: map[string]any{"userId": "u1"}}

	cases := []struct {
		name string
		raw  any
		kind Kind
	}{
		{"map", map[string]any{"userId": "u1"}, KindMap},
		{"node", node, KindMap},
		{"record", &neo4j.Record{Keys: []string{"userId"}, Values: []any{"u1"}}, KindMap},
		{"object wrapper", objectWrapper{Object: map[string]any{"userId": "u1"}}, KindWrapped},
		{"value wrapper", &valueWrapper{Value: node}, KindWrapped},
		{"plain struct", plainUser{UserID: "u1", UserName: "ann"}, KindPlain},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Normalize(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, res.Kind)
			assert.Equal(t, "u1", res.Record["userId"])
		})
	}
}

func TestUnwrapRejectsScalars(t *testing.T) {
	for _, raw := range []any{nil, 42, "text", []any{1, 2}} {
		_, err := Unwrap(raw)
		assert.ErrorIs(t, err, ErrUnexpectedResultFormat)
	}
}

func TestParseMissingFieldsAreZero(t *testing.T) {
	type postRef struct {
		DocumentID   string `json:"documentId"`
		CommentCount int64  `json:"commentCount"`
	}

	got, err := Parse[postRef](Record{"documentId": "d1"}, "documentId", "commentCount")
	require.NoError(t, err)
	assert.Equal(t, postRef{DocumentID: "d1"}, got)
}

func TestParseConvertsNestedMaps(t *testing.T) {
	rec := Record{
		"owner": neo4j.Node{Props: map[string]any{"userId": "u1"}},
		"tags":  []any{map[any]any{"name": "cat"}},
	}

	got, err := Parse[map[string]any](rec)
	require.NoError(t, err)

	owner, ok := got["owner"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "u1", owner["userId"])

	tags, ok := got["tags"].([]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"name": "cat"}, tags[0])
}

func TestParseLooksUpIgnoringCase(t *testing.T) {
	got, err := Parse[plainUser](Record{"USERID": "u9"}, "userId")
	require.NoError(t, err)
	assert.Equal(t, "u9", got.UserID)
}

func TestParseAll(t *testing.T) {
	res := &neo4j.EagerResult{
		Keys: []string{"liker"},
		Records: []*neo4j.Record{
			{Keys: []string{"liker"}, Values: []any{map[string]any{"userId": "u1", "userName": "ann"}}},
			{Keys: []string{"liker"}, Values: []any{map[string]any{"userId": "u2", "userName": "bob"}}},
		},
	}

	got, err := ParseAll[plainUser](res, "liker")
	require.NoError(t, err)
	assert.Equal(t, []plainUser{{"u1", "ann"}, {"u2", "bob"}}, got)

	_, err = ParseAll[plainUser](res, "missing")
	assert.ErrorIs(t, err, ErrUnexpectedResultFormat)
}

func TestGetVertexProperty(t *testing.T) {
	props := Record{
		"userName":  []any{"ann", "ann_old"},
		"profileId": "p1",
		"bio":       []any{map[string]any{"id": 1, "value": "hello"}},
		"age":       int64(30),
		"empty":     []any{},
	}

	assert.Equal(t, "ann", GetVertexProperty(props, "userName", ""))
	assert.Equal(t, "p1", GetVertexProperty(props, "profileId", ""))
	assert.Equal(t, "hello", GetVertexProperty(props, "bio", ""))
	assert.Equal(t, "30", GetVertexProperty(props, "age", ""))
	assert.Equal(t, "none", GetVertexProperty(props, "empty", "none"))
	assert.Equal(t, "none", GetVertexProperty(props, "pfp", "none"))
}
