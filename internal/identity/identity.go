// Package identity extracts the authenticated customer that the edge
// attaches as headers. Token verification happens upstream; services behind
// the gateway only read the result.
package identity

import (
	"net/http"

	"github.com/emindev/giftshop/internal/domain"
)

const (
	HeaderUserID    = "X-User-Id"
	HeaderEmail     = "X-User-Email"
	HeaderPhone     = "X-User-Phone"
	HeaderFirstName = "X-User-First-Name"
	HeaderLastName  = "X-User-Last-Name"
)

// FromRequest reads the customer identity headers. The second return is
// false when no identity is attached, which handlers map to 401.
func FromRequest(r *http.Request) (domain.Customer, bool) {
	id := r.Header.Get(HeaderUserID)
	if id == "" {
		return domain.Customer{}, false
	}

	return domain.Customer{
		ID:        id,
		Email:     r.Header.Get(HeaderEmail),
		Phone:     r.Header.Get(HeaderPhone),
		FirstName: r.Header.Get(HeaderFirstName),
		LastName:  r.Header.Get(HeaderLastName),
	}, true
}
