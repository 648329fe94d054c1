package webapp

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// Renderer turns handler results into responses.
type Renderer interface {
	CanRender(accept string) bool
	Render(ctx context.Context, code int, data interface{}) (*Response, error)
}

// JSONRenderer renders any value as application/json.
type JSONRenderer struct{}

func (JSONRenderer) CanRender(accept string) bool {
	return accept == "" || strings.Contains(accept, "*/*") || strings.Contains(accept, "application/json")
}

func (JSONRenderer) Render(_ context.Context, code int, data interface{}) (*Response, error) {
	body, err := sonic.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("webapp: render json: %w", err)
	}
	return NewResponse(code, body, Header{Name: "Content-Type", Value: "application/json"}), nil
}

// TextRenderer renders values with fmt as text/plain.
type TextRenderer struct{}

func (TextRenderer) CanRender(accept string) bool {
	return strings.Contains(accept, "text/plain")
}

func (TextRenderer) Render(_ context.Context, code int, data interface{}) (*Response, error) {
	var body []byte
	switch v := data.(type) {
	case []byte:
		body = v
	case string:
		body = []byte(v)
	default:
		body = []byte(fmt.Sprint(v))
	}
	return NewResponse(code, body, Header{Name: "Content-Type", Value: "text/plain; charset=utf-8"}), nil
}
