package server

import (
	"log"
	"net/http"
	"strings"

	"pdfvault/backend/utils"
	"pdfvault/shared/endpoints"
)

type Route struct {
	Method string
	Path   string
}

type RouteDef struct {
	Methods HttpMethod
	Path    endpoints.Endpoint
	Handler http.HandlerFunc
}

type router struct {
	routes   map[Route]http.HandlerFunc
	reserved []string
	debug    bool
}

func newRouter(debug bool) *router {
	return &router{
		routes: make(map[Route]http.HandlerFunc),
		debug:  debug,
	}
}

func (r *router) AddRoute(method string, path string, handler http.HandlerFunc) {
	route := Route{Path: path, Method: method}
	r.routes[route] = handler

	// Reserve endpoint to help pattern matching on new requests
	endpoint := strings.Split(route.Path, "/")[1]
	if len(endpoint) > 0 && endpoint != "*" && !utils.Contains(r.reserved, endpoint) {
		r.reserved = append(r.reserved, endpoint)
	}
}

func (r *router) AddRoutes(routes []RouteDef) {
	for _, route := range routes {
		for methodInt, methodStr := range MethodMap {
			if route.Methods&methodInt == 0 {
				continue
			}

			path := string(route.Path)

			// Check for paths with optional segments
			if strings.Contains(path, "/?") {
				optPath := strings.Replace(path, "/?", "", 1)
				wildPath := strings.Replace(path, "/?", "/*", 1)
				r.AddRoute(methodStr, optPath, route.Handler)
				r.AddRoute(methodStr, wildPath, route.Handler)
			} else {
				r.AddRoute(methodStr, path, route.Handler)
			}
		}
	}
}

// ServeHTTP finds the proper routing handler for the provided path. A path
// that matches a route under a different method gets a 405.
func (r *router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	pathMatched := false
	for el, handler := range r.routes {
		if !r.matchPath(el.Path, req.URL.Path) {
			continue
		}

		if el.Method == req.Method {
			if r.debug {
				log.Printf("[%s] %s %s\n", requestID(req), req.Method, req.URL.Path)
			}
			handler(w, req)
			return
		}

		pathMatched = true
	}

	log.Printf("Error: %s %s", req.Method, req.URL.Path)
	if pathMatched {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	http.NotFound(w, req)
}

// matchPath takes a URL path and determines if it's a match for a particular
// handler. This allows differentiating between two paths where the only
// difference is a wildcard (i.e. "/share" and "/share/*")
func (r *router) matchPath(pattern, path string) bool {
	parts := strings.Split(pattern, "/")
	segments := strings.Split(path, "/")

	if len(parts) != len(segments) || len(segments) < 2 {
		return false
	}

	isWildcard := parts[1] == "*"
	isEndpoint := utils.Contains(r.reserved, segments[1])
	if isWildcard && isEndpoint {
		return false
	}

	for i, part := range parts {
		if part == "*" && len(segments[i]) > 0 {
			continue
		}

		if part != segments[i] {
			return false
		}
	}

	return true
}
