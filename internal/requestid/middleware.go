package requestid

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

// Header is the request/response header carrying the request identifier.
const Header = "X-Request-ID"

const maxIDLength = 128

// Inbound ids are only trusted when they look like ids; anything else is
// replaced so log fields stay injection-free.
var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Middleware assigns every request an identifier, echoing a well-formed
// inbound X-Request-ID or generating a fresh UUID. The id is stored in the
// request context and mirrored on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if !isValid(id) {
			id = uuid.New().String()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), id)))
	})
}

func isValid(id string) bool {
	return id != "" && len(id) <= maxIDLength && validID.MatchString(id)
}
