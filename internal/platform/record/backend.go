package record

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// Backend holds what every kind's service is built from.
type Backend struct {
	// Pool selects PostgreSQL stores. Nil means in-memory stores.
	Pool     *pgxpool.Pool
	Registry *Registry
	Tx       TxRunner
	Logger   zerolog.Logger
}

// Mount builds the service for def and serves it on read and write.
func Mount[T Payload](b Backend, def Definition[T], read, write *echo.Group) *Service[T] {
	var store Store[T]
	if b.Pool != nil {
		store = NewPGStore(b.Pool, def)
	} else {
		store = NewMemoryStore(def)
	}
	tx := b.Tx
	if tx == nil {
		tx = NoTx{}
	}
	svc := NewService(def, store, b.Registry, tx, b.Logger)
	NewHandler(svc).RegisterRoutes(read, write)
	return svc
}
