package pdf

import (
	"context"
	"io"

	"github.com/smallbiznis/benchstay/internal/providers/tabular"
	"go.uber.org/fx"
)

const ContentType = "application/pdf"

type Provider interface {
	GenerateReport(ctx context.Context, report tabular.Report) (io.Reader, error)
}

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)
