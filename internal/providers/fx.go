package providers

import (
	"github.com/smallbiznis/benchstay/internal/providers/excel"
	"github.com/smallbiznis/benchstay/internal/providers/pdf"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	excel.Module,
	pdf.Module,
)
