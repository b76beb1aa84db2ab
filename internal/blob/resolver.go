package blob

import "strings"

// URLResolver maps stored blob references to the URLs the gateway serves
// them under. A reference that does not resolve to a stored blob yields
// no URL, so callers can drop it instead of handing a dead link to a
// model.
type URLResolver struct {
	store   *Store
	baseURL string
}

// NewURLResolver creates a resolver rooted at baseURL, e.g.
// "http://127.0.0.1:18990".
func NewURLResolver(store *Store, baseURL string) *URLResolver {
	return &URLResolver{store: store, baseURL: strings.TrimRight(baseURL, "/")}
}

// Resolve returns the fetchable URL for a blob reference.
func (r *URLResolver) Resolve(ref string) (string, bool) {
	if !r.store.Exists(ref) {
		return "", false
	}
	return r.baseURL + "/api/blobs/" + ref, true
}
