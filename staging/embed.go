package staging

import (
	"embed"
	"io/fs"
)

//go:embed queries
var queryFiles embed.FS

// Queries returns the packaged query templates, addressed by names such
// as "asset/existing.rq".
func Queries() fs.FS {
	sub, err := fs.Sub(queryFiles, "queries")
	if err != nil {
		panic(err)
	}
	return sub
}
