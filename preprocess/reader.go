package preprocess

import (
	"context"

	"github.com/pkg/errors"
	"github.com/viant/afs"
)

// AFSReader implements FileReader over a viant/afs.Service, the storage
// backend the rest of this tool uses for everything else it reads.
type AFSReader struct {
	fs  afs.Service
	ctx context.Context
}

// NewAFSReader returns a FileReader backed by fs.
func NewAFSReader(ctx context.Context, fs afs.Service) *AFSReader {
	return &AFSReader{fs: fs, ctx: ctx}
}

// ReadFile implements FileReader.
func (r *AFSReader) ReadFile(path string) ([]byte, error) {
	content, err := r.fs.DownloadWithURL(r.ctx, path)
	if err != nil {
		return nil, errors.Wrapf(err, "preprocess: reading %s", path)
	}
	return content, nil
}

// FileSize implements FileReader.
func (r *AFSReader) FileSize(path string) (float64, error) {
	object, err := r.fs.Object(r.ctx, path)
	if err != nil {
		return 0, errors.Wrapf(err, "preprocess: stat %s", path)
	}
	return float64(object.Size()), nil
}
