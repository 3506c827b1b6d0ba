package server

import (
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"

	clientdist "github.com/vango-dev/waypoint/client/dist"
)

var clientETag = func() string {
	sum := sha256.Sum256(clientdist.WaypointJS)
	return fmt.Sprintf("%q", fmt.Sprintf("%x", sum[:16]))
}()

func serveClient(w http.ResponseWriter, r *http.Request) {
	if len(clientdist.WaypointJS) == 0 {
		http.Error(w, "Thin client not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", clientETag)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	// The URL is not versioned, so caches must revalidate.
	w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")

	if etagMatches(r.Header.Get("If-None-Match"), clientETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(clientdist.WaypointJS)
}

// etagMatches handles lists and weak validators:
// If-None-Match: "abc", W/"def"
func etagMatches(header, etag string) bool {
	if header == "" || etag == "" {
		return false
	}
	for _, part := range strings.Split(header, ",") {
		candidate := strings.TrimSpace(part)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
