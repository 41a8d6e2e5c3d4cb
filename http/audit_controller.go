package http

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/go-singleton/framework/audit"
	gohttp "github.com/km-arc/go-singleton/framework/http"
	"github.com/km-arc/go-singleton/framework/routing"
	"github.com/km-arc/go-singleton/framework/singleton"
)

// AuditController exposes audit appends and the singleton registry over HTTP.
type AuditController struct {
	Audit    *audit.Factory
	Registry *singleton.Registry
	Logger   *zap.Logger
}

// Routes registers:
//
//	POST /audit/{file}   {"message": "..."}  → 201
//	GET  /singletons[?kind=audit]            → 200
//	GET  /healthz                            → 200
func (c *AuditController) Routes(r *routing.Router) {
	r.Post("/audit/{file}", c.Append)
	r.Get("/singletons", c.Singletons)
	r.Get("/healthz", c.Health)
}

type appendRequest struct {
	Message string `json:"message"`
}

// Append writes one line to the audit file named in the route.
func (c *AuditController) Append(w http.ResponseWriter, r *http.Request) {
	req := gohttp.NewRequest(r)
	res := gohttp.NewResponse(w)

	var body appendRequest
	if err := req.Bind(&body); err != nil {
		res.BadRequest(err.Error())
		return
	}
	if body.Message == "" {
		res.BadRequest("message is required")
		return
	}

	file := req.RouteParam("file")
	m, err := c.Audit.GetInstance(file)
	if err != nil {
		c.fail(res, file, err)
		return
	}
	if err := m.Log(body.Message); err != nil {
		c.fail(res, file, err)
		return
	}
	res.Created(map[string]any{"file": file, "message": body.Message})
}

type keyView struct {
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// Singletons lists the Ready registry keys, optionally filtered by kind.
func (c *AuditController) Singletons(w http.ResponseWriter, r *http.Request) {
	kind := gohttp.NewRequest(r).Query("kind")

	out := make([]keyView, 0)
	for _, k := range c.Registry.Keys() {
		if kind != "" && k.Kind != kind {
			continue
		}
		out = append(out, keyView{Kind: k.Kind, Name: k.Name, State: c.Registry.State(k).String()})
	}
	gohttp.NewResponse(w).Success(out)
}

// Health reports liveness.
func (c *AuditController) Health(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success(map[string]any{"status": "ok"})
}

func (c *AuditController) fail(res *gohttp.Response, file string, err error) {
	if errors.Is(err, singleton.ErrInvalidKey) {
		res.BadRequest(err.Error())
		return
	}
	if c.Logger != nil {
		c.Logger.Error("audit append failed", zap.String("file", file), zap.Error(err))
	}
	res.ServerError("audit append failed")
}
