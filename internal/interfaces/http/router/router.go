package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Router mounts route groups under /api/<version> with the API-wide
// middleware chain. Engine-level routes such as /swagger stay outside it.
type Router struct {
	engine  *gin.Engine
	version string
	chain   []gin.HandlerFunc
	groups  []*Group
}

func New(engine *gin.Engine, version string) *Router {
	if version == "" {
		version = "v1"
	}
	return &Router{engine: engine, version: version}
}

// BasePath is the prefix every group is mounted under
func (r *Router) BasePath() string {
	return "/api/" + r.version
}

// Use appends middleware run for API routes only
func (r *Router) Use(mw ...gin.HandlerFunc) *Router {
	r.chain = append(r.chain, mw...)
	return r
}

func (r *Router) Mount(groups ...*Group) *Router {
	r.groups = append(r.groups, groups...)
	return r
}

// Setup registers the collected groups on the engine. Call it once,
// after every Use and Mount.
func (r *Router) Setup() {
	api := r.engine.Group(r.BasePath(), r.chain...)
	for _, g := range r.groups {
		g.mount(api)
	}
}

// Group is the route set of one workflow stage
type Group struct {
	name   string
	prefix string
	guards []gin.HandlerFunc
	routes []Route
	nested []*Group
}

// Route is a method and path relative to the parent of its group
type Route struct {
	Method string
	Path   string

	handlers []gin.HandlerFunc
}

func NewGroup(name, prefix string) *Group {
	return &Group{name: name, prefix: prefix}
}

func (g *Group) Name() string   { return g.name }
func (g *Group) Prefix() string { return g.prefix }

// Guard adds middleware applied to every route of g and its nested groups
func (g *Group) Guard(mw ...gin.HandlerFunc) *Group {
	g.guards = append(g.guards, mw...)
	return g
}

func (g *Group) Handle(method, path string, handlers ...gin.HandlerFunc) *Group {
	g.routes = append(g.routes, Route{Method: method, Path: path, handlers: handlers})
	return g
}

func (g *Group) GET(path string, h ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodGet, path, h...)
}

func (g *Group) POST(path string, h ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPost, path, h...)
}

func (g *Group) PUT(path string, h ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPut, path, h...)
}

func (g *Group) PATCH(path string, h ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodPatch, path, h...)
}

func (g *Group) DELETE(path string, h ...gin.HandlerFunc) *Group {
	return g.Handle(http.MethodDelete, path, h...)
}

// Nest creates a group mounted below g
func (g *Group) Nest(name, prefix string) *Group {
	child := NewGroup(name, prefix)
	g.nested = append(g.nested, child)
	return child
}

func (g *Group) mount(parent *gin.RouterGroup) {
	rg := parent.Group(g.prefix, g.guards...)
	for _, rt := range g.routes {
		rg.Handle(rt.Method, rt.Path, rt.handlers...)
	}
	for _, child := range g.nested {
		child.mount(rg)
	}
}

// Routes lists every route of g, nested groups included, prefixed with g's
// own prefix. Handlers are omitted.
func (g *Group) Routes() []Route {
	var out []Route
	for _, rt := range g.routes {
		out = append(out, Route{Method: rt.Method, Path: join(g.prefix, rt.Path)})
	}
	for _, child := range g.nested {
		for _, rt := range child.Routes() {
			out = append(out, Route{Method: rt.Method, Path: join(g.prefix, rt.Path)})
		}
	}
	return out
}

func join(prefix, path string) string {
	if path == "" || path == "/" {
		return prefix
	}
	return prefix + path
}
