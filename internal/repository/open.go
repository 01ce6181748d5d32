package repository

import (
	"context"
	"errors"
	"fmt"
)

const (
	KindMemory   = "memory"
	KindPostgres = "postgres"
	KindMongo    = "mongo"
)

var ErrUnknownStore = errors.New("unknown order store")

type OpenOptions struct {
	Kind          string
	Postgres      *Credentials
	MongoURI      string
	MongoDatabase string
}

// Open connects the configured order store and prepares its schema.
func Open(ctx context.Context, opts OpenOptions) (OrderRepository, error) {
	switch opts.Kind {
	case KindMemory, "":
		return NewMemoryRepository(), nil
	case KindPostgres:
		repo, err := NewPostgresRepository(opts.Postgres)
		if err != nil {
			return nil, err
		}
		if err := repo.RunMigrations(opts.Postgres); err != nil {
			repo.Close()
			return nil, err
		}
		return repo, nil
	case KindMongo:
		db, err := ConnectMongoDB(ctx, opts.MongoURI, opts.MongoDatabase)
		if err != nil {
			return nil, err
		}
		repo := NewMongoRepository(db)
		if err := repo.CreateIndexes(ctx); err != nil {
			repo.Close()
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, opts.Kind)
	}
}
