// Package imagehost stores product mockups, canvas resources and design
// previews on an external object store and addresses them by public id
// (the object key).
package imagehost

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Asset is an uploaded object.
type Asset struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// Host is the subset of the image CDN the service relies on.  Destroy must
// succeed for ids that no longer exist.
type Host interface {
	Upload(ctx context.Context, folder, filename, contentType string, body io.Reader, size int64) (Asset, error)
	Destroy(ctx context.Context, publicID string) error
	DeleteFolder(ctx context.Context, folder string) (int, error)
}

// Folders that uploads may target.
var folders = map[string]bool{
	"graphics": true,
	"patterns": true,
	"previews": true,
	"products": true,
	"designs":  true,
}

var (
	ErrFolder      = errors.New("unknown upload folder")
	ErrContentType = errors.New("only image uploads are accepted")
)

// ValidFolder reports whether uploads may target folder.
func ValidFolder(folder string) bool { return folders[folder] }

// ValidContentType accepts image/* media types.
func ValidContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return strings.HasPrefix(ct, "image/")
}

// objectKey builds folder/<uuid><ext>, keeping the original extension.
func objectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > 8 {
		ext = ""
	}
	return folder + "/" + uuid.NewString() + ext
}
