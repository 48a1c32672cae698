package postgres

import (
	"github.com/tinoosan/fintrack/internal/service/account"
	"github.com/tinoosan/fintrack/internal/service/category"
	"github.com/tinoosan/fintrack/internal/service/currency"
	"github.com/tinoosan/fintrack/internal/service/summary"
	"github.com/tinoosan/fintrack/internal/service/transaction"
	"github.com/tinoosan/fintrack/internal/service/user"
)

// Compile-time interface assertions documenting which interfaces Store satisfies.
var (
	_ transaction.Repo       = (*Store)(nil)
	_ transaction.Writer     = (*Store)(nil)
	_ transaction.UnitOfWork = (*Store)(nil)
	_ account.Repo           = (*Store)(nil)
	_ account.Writer         = (*Store)(nil)
	_ category.Repo          = (*Store)(nil)
	_ category.Writer        = (*Store)(nil)
	_ currency.Repo          = (*Store)(nil)
	_ currency.Writer        = (*Store)(nil)
	_ user.Repo              = (*Store)(nil)
	_ user.Writer            = (*Store)(nil)
	_ summary.Repo           = (*Store)(nil)
)
