package transaction

import "time"

// NewWithClock builds the service with a fixed clock for tests.
func NewWithClock(repo Repo, writer Writer, uow UnitOfWork, clean Sanitizer, now func() time.Time) Service {
	return &service{repo: repo, writer: writer, uow: uow, clean: clean, now: now}
}
