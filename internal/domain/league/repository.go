package league

import "context"

type Repository interface {
	List(ctx context.Context) ([]League, error)
	GetByCode(ctx context.Context, code string) (League, bool, error)
}
