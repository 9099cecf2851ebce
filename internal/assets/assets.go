// Package assets maps catalog ids onto the Flashpoint image layout.
package assets

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

type Kind string

const (
	Logo       Kind = "Logos"
	Screenshot Kind = "Screenshots"
)

// Kinds lists the image folders in display order.
var Kinds = []Kind{Logo, Screenshot}

// Image is where one picture of an entry lives, on disk and on the server.
type Image struct {
	Kind   Kind
	Local  string
	Remote string
	Exists bool // Local was present when Resolve ran
}

// RelPath returns Data/Images/<kind>/<id[0:2]>/<id[2:4]>/<id>.png with
// forward slashes.
func RelPath(kind Kind, id string) (string, error) {
	if len(id) < 4 {
		return "", fmt.Errorf("id %q too short for the image tree", id)
	}
	return "Data/Images/" + string(kind) + "/" + id[0:2] + "/" + id[2:4] + "/" + id + ".png", nil
}

// ImagePaths builds the logo and screenshot locations of id under the
// install root and the image server. It does not touch the filesystem.
func ImagePaths(root, server, id string) ([]Image, error) {
	out := make([]Image, 0, len(Kinds))
	for _, k := range Kinds {
		rel, err := RelPath(k, id)
		if err != nil {
			return nil, err
		}
		img := Image{Kind: k, Local: filepath.Join(root, filepath.FromSlash(rel))}
		if server != "" {
			remote, err := url.JoinPath(server, rel)
			if err != nil {
				return nil, fmt.Errorf("image server %q: %w", server, err)
			}
			img.Remote = remote
		}
		out = append(out, img)
	}
	return out, nil
}

// Resolve is ImagePaths plus a stat of each local file.
func Resolve(root, server, id string) ([]Image, error) {
	imgs, err := ImagePaths(root, server, id)
	if err != nil {
		return nil, err
	}
	for i := range imgs {
		if st, err := os.Stat(imgs[i].Local); err == nil && !st.IsDir() {
			imgs[i].Exists = true
		}
	}
	return imgs, nil
}

// Location is the local path when present, otherwise the remote URL.
func (i Image) Location() string {
	if i.Exists || i.Remote == "" {
		return i.Local
	}
	return i.Remote
}
