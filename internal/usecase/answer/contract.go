package answer

import (
	"context"

	"github.com/kailas-cloud/lexroute/internal/domain/corpus"
	"github.com/kailas-cloud/lexroute/internal/usecase/intent"
	"github.com/kailas-cloud/lexroute/internal/usecase/pipeline"
)

// Router decides which editions a query targets.
type Router interface {
	Route(ctx context.Context, query string) intent.Decision
}

// Retriever ranks evidence within one edition.
type Retriever interface {
	Retrieve(ctx context.Context, query string, version corpus.Version, limit int) (pipeline.Retrieval, error)
	Evidence(ctx context.Context, r pipeline.Retrieval) []pipeline.Evidence
}
