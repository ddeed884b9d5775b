package solr

import "context"

// CoreWriter binds a Client to one core, giving the pipeline a single-method
// bulk writer.
type CoreWriter struct {
	Client *Client
	Core   string
}

// Add submits docs to the bound core as one bulk write.
func (w CoreWriter) Add(ctx context.Context, docs []Document) error {
	return w.Client.Add(ctx, w.Core, docs)
}
