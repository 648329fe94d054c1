package main

import (
	"context"
	"errors"
	"sync"

	octrace "go.opencensus.io/trace"
	"go.uber.org/zap"

	"github.com/lightstep/webtrace-go/webapp"
	"github.com/lightstep/webtrace-go/webtraceoc"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// store is an in-memory item store resolved into handlers by the injector.
type store struct {
	mu    sync.RWMutex
	items map[string]item
}

func (s *store) get(ctx context.Context, id string) (item, bool) {
	_, span := webtraceoc.StartSpan(ctx, "store.get")
	defer span.End()
	span.AddAttributes(octrace.StringAttribute("item.id", id))

	s.mu.RLock()
	defer s.mu.RUnlock()
	it, ok := s.items[id]
	return it, ok
}

func newApp(logger *zap.Logger) *webapp.App {
	db := &store{items: map[string]item{
		"1":  {ID: "1", Name: "keyboard"},
		"42": {ID: "42", Name: "towel"},
	}}

	routes := []*webapp.Route{
		{
			Name:    "get_item",
			Method:  "GET",
			Pattern: "/items/{id}",
			Inject:  []string{"store"},
			Handler: func(ctx context.Context, req *webapp.Request) (interface{}, error) {
				s := req.Dep("store").(*store)
				it, ok := s.get(ctx, req.RouteParams["id"])
				if !ok {
					return nil, webapp.NewHTTPError(404, map[string]string{"error": "no such item"})
				}
				return it, nil
			},
		},
		{
			Method:  "GET",
			Pattern: "/old-items/{id}",
			Handler: func(_ context.Context, req *webapp.Request) (interface{}, error) {
				return nil, webapp.Redirect("/items/" + req.RouteParams["id"])
			},
		},
		{
			Method:  "GET",
			Pattern: "/fail",
			Handler: func(context.Context, *webapp.Request) (interface{}, error) {
				return nil, errors.New("something broke")
			},
		},
	}

	return webapp.NewApp(routes,
		webapp.WithLogger(logger),
		webapp.WithMiddleware(webapp.Named("access_log", func(next webapp.Handler) webapp.Handler {
			return func(ctx context.Context, req *webapp.Request) (interface{}, error) {
				res, err := next(ctx, req)
				logger.Debug("handled", zap.String("method", req.Method), zap.String("path", req.Path), zap.Error(err))
				return res, err
			}
		})),
		webapp.WithComponents(webapp.Provide("store", func(context.Context, *webapp.Request) (interface{}, error) {
			return db, nil
		})),
	)
}
