package preview

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/typevault/typevault/pkg/fontparse"
	"github.com/typevault/typevault/pkg/hashing"
)

// DefaultWindow is the number of files hashed and parsed concurrently.
// Small and fixed to bound memory on large batches.
const DefaultWindow = 3

// Source supplies one file's name and raw bytes to Scan.
type Source struct {
	Name string
	Data []byte
}

// Progress reports the completion of one file during a scan. Events arrive
// as files finish, which may not match submission order within a window.
type Progress struct {
	Index  int
	Record *FileRecord
}

// Scan hashes and parses a batch of files in fixed-size concurrent windows,
// emitting a Progress event per completed file when progress is non-nil.
// Parse failures are recorded per file and never fail the batch; only
// context cancellation aborts a scan. Records are returned in submission
// order regardless of completion order.
func Scan(ctx context.Context, sources []Source, window int, progress chan<- Progress) ([]*FileRecord, error) {
	if window < 1 {
		window = DefaultWindow
	}

	records := make([]*FileRecord, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(window)

	for i, src := range sources {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			rec := scanOne(src)
			records[i] = rec

			if progress != nil {
				select {
				case progress <- Progress{Index: i, Record: rec}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}

func scanOne(src Source) *FileRecord {
	rec := &FileRecord{
		Filename:    src.Name,
		Size:        int64(len(src.Data)),
		QuickHash:   hashing.QuickHash(src.Data),
		ContentHash: hashing.ContentHash(src.Data),
	}

	md, err := fontparse.Parse(src.Data)
	if err != nil {
		rec.Err = err
		return rec
	}

	rec.Metadata = md
	return rec
}
