package cache

import "github.com/tinoosan/fintrack/internal/service/summary"

var (
	_ summary.Cache = (*Summaries)(nil)
	_ summary.Cache = Nop{}
)
