package spacetraveling

import "embed"

// EmbeddedAssets contains static assets shipped with the app:
// comments.js, which mounts the utterances widget.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
