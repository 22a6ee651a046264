package migrations

import "embed"

// Files holds the numbered, forward-only schema migrations compiled into
// the binary. The single deployable artifact carries its own schema; there
// is no separate migration step to run.
//
//go:embed *.sql
var Files embed.FS
