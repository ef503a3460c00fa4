package usecases

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/0xcro3dile/docqa-go/internal/domain/entities"
	"github.com/0xcro3dile/docqa-go/internal/domain/ports"
)

// DefaultDescribeLimit bounds concurrent table detail requests.
const DefaultDescribeLimit = 4

// DatabaseBrowser owns the list of backend tables with their details.
type DatabaseBrowser struct {
	svc    ports.DatabaseService
	logger *slog.Logger
	limit  int
	list   listState[entities.DatabaseTable]
}

// NewDatabaseBrowser creates a browser issuing at most limit detail requests at once.
func NewDatabaseBrowser(svc ports.DatabaseService, limit int, logger *slog.Logger) *DatabaseBrowser {
	if limit <= 0 {
		limit = DefaultDescribeLimit
	}
	return &DatabaseBrowser{svc: svc, limit: limit, logger: loggerOrDefault(logger)}
}

// Tables returns the last fetched tables.
func (b *DatabaseBrowser) Tables() []entities.DatabaseTable {
	items, _ := b.list.snapshot()
	return items
}

// Table returns one fetched table by name.
func (b *DatabaseBrowser) Table(name string) (entities.DatabaseTable, bool) {
	items, _ := b.list.snapshot()
	for _, t := range items {
		if t.Name == name {
			return t, true
		}
	}
	return entities.DatabaseTable{}, false
}

// Refresh lists the tables, then describes each one. A table whose detail
// request fails keeps its summary.
func (b *DatabaseBrowser) Refresh(ctx context.Context) error {
	tables, err := b.svc.ListTables(ctx)
	if err != nil {
		b.logger.Warn("fetching database tables failed", "error", err)
		return err
	}

	out := make([]entities.DatabaseTable, len(tables))
	copy(out, tables)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.limit)
	for i := range out {
		g.Go(func() error {
			detail, err := b.svc.DescribeTable(gctx, out[i].Name)
			if err != nil {
				b.logger.Warn("describing table failed", "table", out[i].Name, "error", err)
				return nil
			}
			out[i].Columns = detail.Columns
			out[i].SampleData = detail.SampleData
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}
	b.list.set(out)
	return nil
}
