package es

import "github.com/elastic/go-elasticsearch/v8/typedapi/types"

// ByProfileID profiles 集合按 profileId 精确匹配
func ByProfileID(profileID string) *types.Query {
	return &types.Query{
		Term: map[string]types.TermQuery{
			"profileId": {Value: profileID},
		},
	}
}

// ByUserNames 任一用户名匹配
func ByUserNames(names []string) *types.Query {
	should := make([]types.Query, 0, len(names))
	for _, name := range names {
		should = append(should, types.Query{
			Term: map[string]types.TermQuery{
				"userName": {Value: name},
			},
		})
	}
	return &types.Query{
		Bool: &types.BoolQuery{Should: should},
	}
}
