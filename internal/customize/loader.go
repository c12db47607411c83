package customize

import (
	"context"

	"github.com/dgallion1/templatizer/internal/fetch"
)

// Loader opens templates by source string: a URL, an s3:// prefix or a
// local directory.
type Loader struct {
	Fetch   fetch.Options
	Options Options
}

// Load resolves source to a fetcher and loads the template behind it.
func (l *Loader) Load(ctx context.Context, source string) (*Template, error) {
	f, err := fetch.ForSource(source, l.Fetch)
	if err != nil {
		return nil, err
	}
	return Load(ctx, f, l.Options)
}
