package render

import "context"

type Renderer interface {
	RenderHome(ctx context.Context, page HomePage) ([]byte, error)
	RenderArticle(ctx context.Context, page ArticlePage) ([]byte, error)
	RenderNotFound(ctx context.Context, page NotFoundPage) ([]byte, error)
	RenderError(ctx context.Context, page ErrorPage) ([]byte, error)
}
