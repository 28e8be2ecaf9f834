package middleware

import (
	"github.com/danielgtaylor/huma/v2"
)

type Func = func(ctx huma.Context, next func(huma.Context))

// Chain базовая цепочка мидлварей, общая для всех групп операций
type Chain struct {
	base huma.Middlewares
}

func NewChain(base ...Func) *Chain {
	return &Chain{base: base}
}

// With возвращает новую цепочку: базовые мидлвари, затем extra.
// Базовая цепочка не меняется.
func (c *Chain) With(extra ...Func) huma.Middlewares {
	out := make(huma.Middlewares, 0, len(c.base)+len(extra))
	out = append(out, c.base...)
	return append(out, extra...)
}
