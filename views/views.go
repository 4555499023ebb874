// Package views holds the default templ components for spacetraveling.
// Sites that want their own markup build a spacetraveling.ViewFuncs from
// their components instead.
package views

import spacetraveling "github.com/eringen/spacetraveling"

// Default returns the ViewFuncs backed by this package.
func Default() spacetraveling.ViewFuncs {
	return spacetraveling.ViewFuncs{
		Home:        Home,
		PostList:    PostList,
		Post:        Post,
		PostPartial: PostPartial,
		PostPending: PostPending,
		NotFound:    NotFound,
		ServerError: ServerError,
	}
}
