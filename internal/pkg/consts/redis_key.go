package consts

const (
	PostDocKey       = "post:doc:"
	PostIDKey        = "post:id:"
	PostFullKey      = "post:full:"
	PostStaleKey     = "post:stale"
	ProfileIDKey     = "profile:id:"
	ProfileNameKey   = "profile:name:"
	ProfileNamesKey  = "profile:names:"
	SuggestKey       = "suggest:"
	SuggestKeyPrefix = SuggestKey + "*"
)
