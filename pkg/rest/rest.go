package rest

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
)

// Config is used to provide dependencies and configuration to the New function.
type Config struct {
	Logger logrus.FieldLogger
}

func New(cfg Config) (*Engine, error) {

	// assign a logger or fail
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}

	var engine = &Engine{
		baseLogger: cfg.Logger,
		router:     httprouter.New(),
	}

	// disables redirections such as `/foo/` to `/foo`
	engine.router.RedirectTrailingSlash = false

	// disables attempts to fix common path issues and redirects them, i.e. `/FoO` redirects to `/foo`
	engine.router.RedirectFixedPath = false

	// every route receives a request context carrying its own logger
	engine.Use(engine.withRequestContext)

	return engine, nil
}

// Engine contains the muxer, logger and middleware.
type Engine struct {
	router *httprouter.Router

	// a middleware queue; invocation order follows insertion order
	middleware []func(http.Handler) http.Handler

	// baseLogger is a logger for non-requests contexts, like goroutines or background tasks not started by a request
	baseLogger logrus.FieldLogger
}

// Handler returns an instance of httprouter.Router that handle APIs registered here
func (e *Engine) Handler() http.Handler {
	return e.router
}

// Handle registers the path and method to the given handler. Also applies the middleware to the Handler
// Handle calls the base router, to register the method, path and handler.
func (e *Engine) Handle(method string, path string, handler http.Handler, middleware ...func(http.Handler) http.Handler) {

	// the per-route specific middleware runs closest to the handler
	for _, mw := range middleware {
		handler = mw(handler)
	}

	// the global middleware wraps everything else; reversed so that the first inserted runs first
	for i := len(e.middleware) - 1; i >= 0; i-- {
		handler = e.middleware[i](handler)
	}

	// associate the final composed handler to the selected path and method pair
	e.router.Handler(method, path, handler)
}

// Use specifies one or multiple new handlers that will be evaluated for every specified route (ie. logger).
// Routes registered before a call to Use aren't affected.
func (e *Engine) Use(mw ...func(http.Handler) http.Handler) {
	e.middleware = append(e.middleware, mw...)
}

// Get defines a new GET method handler for the specified path.
// The variadic arguments can include middleware that will be exclusively evaluated for the path.
func (e *Engine) Get(path string, handlerFunc http.HandlerFunc, middleware ...func(http.Handler) http.Handler) {
	e.Handle(http.MethodGet, path, handlerFunc, middleware...)
}

func (e *Engine) Post(path string, handlerFunc http.HandlerFunc, middleware ...func(http.Handler) http.Handler) {
	e.Handle(http.MethodPost, path, handlerFunc, middleware...)
}

// ServeFiles serves files from the given file system root. The path must end with "/*filepath".
func (e *Engine) ServeFiles(path string, root http.FileSystem) {
	e.router.ServeFiles(path, root)
}

// GetParam returns the named path parameter, or an empty string when the route doesn't define it.
func GetParam(request *http.Request, name string) string {
	return httprouter.ParamsFromContext(request.Context()).ByName(name)
}
