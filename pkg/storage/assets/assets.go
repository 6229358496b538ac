package assets

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// image folders referenced by the seeded catalog's URLs, relative to the static root
var imageFolders = []string{
	filepath.Join("images", "wallpapers"),
	filepath.Join("images", "categories"),
}

type Storage struct {
	Logger logrus.FieldLogger
	Path   string
}

func New(logger logrus.FieldLogger, path string) (storage Storage, err error) {
	storage.Logger = logger
	logger.WithField("path", path).Info("initialising static assets store")

	// attempt to create the assets directories if they don't exist
	for _, folder := range imageFolders {
		if err = os.MkdirAll(filepath.Join(path, folder), 0750); err != nil {
			return storage, err
		}
	}

	storage.Path = path
	return storage, nil
}

// FileSystem exposes the assets for serving.
func (s Storage) FileSystem() http.FileSystem {
	return http.Dir(s.Path)
}
