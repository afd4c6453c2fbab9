package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/EgorLis/my-books/internal/auth/password"
	"github.com/EgorLis/my-books/internal/auth/token"
	"github.com/EgorLis/my-books/internal/config"
	"github.com/EgorLis/my-books/internal/domain"
	"github.com/EgorLis/my-books/internal/imaging"
	redisx "github.com/EgorLis/my-books/internal/infra/cache/redis"
	"github.com/EgorLis/my-books/internal/infra/database/memory"
	"github.com/EgorLis/my-books/internal/infra/database/mongo"
	"github.com/EgorLis/my-books/internal/infra/database/postgres"
	"github.com/EgorLis/my-books/internal/infra/storage/disk"
	s3storage "github.com/EgorLis/my-books/internal/infra/storage/s3"
	"github.com/EgorLis/my-books/internal/service/books"
	"github.com/EgorLis/my-books/internal/service/users"
	"github.com/EgorLis/my-books/internal/transport/web"
	"github.com/EgorLis/my-books/internal/transport/web/v1/health"
)

// store — общий интерфейс всех драйверов БД
type store interface {
	domain.UsersRepo
	domain.BooksRepo
}

type App struct {
	config  *config.Config
	server  *web.Server
	log     *log.Logger
	storage domain.BlobStorage
	cache   domain.Cache
	repo    store
	books   *books.Service
}

func newLogger(base *log.Logger, name string) *log.Logger {
	return log.New(base.Writer(), base.Prefix()+"["+name+"] ", base.Flags())
}

func Build(ctx context.Context) (*App, error) {
	base := log.New(os.Stdout, "[app] ", log.LstdFlags)

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed load config: %w", err)
	}
	base.Printf("\n  configuration: %s-------------------", cfg)

	repo, err := openStore(ctx, base, cfg)
	if err != nil {
		return nil, err
	}

	storage, err := openStorage(ctx, base, cfg)
	if err != nil {
		repo.Close()
		return nil, err
	}

	var (
		cache domain.Cache
		// nil-интерфейс, а не nil-указатель: health проверяет Cache != nil
		cachePinger health.Pinger
	)
	if cfg.RedisAddr != "" {
		base.Println("init Redis")
		rc := redisx.New(redisx.Config{
			Addr:     cfg.RedisAddr,
			DB:       cfg.RedisDB,
			Password: cfg.RedisPassword,
		}, newLogger(base, "redis"))
		if err := rc.Ping(ctx); err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed init redis: %w", err)
		}
		cache, cachePinger = rc, rc
		base.Println("Redis is initialized")
	} else {
		base.Println("REDIS_ADDR is empty, cache disabled")
	}

	// Auth primitives
	hasher, err := password.New(cfg.PasswordHasher, cfg.BcryptCost)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed init hasher: %w", err)
	}
	tm := token.New(cfg.AuthJWTSecret, cfg.AuthIssuer, cfg.AuthTokenTTL)

	usersSvc := users.New(repo, hasher, tm, newLogger(base, "users"))
	booksSvc := books.New(repo, storage, imaging.New(), newLogger(base, "books"),
		books.WithCache(cache, cfg.CacheTTLSeconds()))

	base.Println("init Server")
	svc := web.Services{Users: usersSvc, Books: booksSvc}
	infra := web.Infra{DB: repo, Storage: storage, Cache: cachePinger}
	server := web.New(newLogger(base, "server"), cfg, svc, infra)
	base.Println("Server is initialized")

	base.Println("build ended")
	return &App{
		config:  cfg,
		server:  server,
		log:     base,
		storage: storage,
		cache:   cache,
		repo:    repo,
		books:   booksSvc,
	}, nil
}

func openStore(ctx context.Context, base *log.Logger, cfg *config.Config) (store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		base.Println("init PostgreSQL")
		pgRepo, err := postgres.NewPGRepo(ctx, newLogger(base, "postgres"), cfg.GetDSN())
		if err != nil {
			return nil, fmt.Errorf("failed init postgres: %w", err)
		}
		base.Println("PostgreSQL is initialized")
		return pgRepo, nil
	case config.DriverMongo:
		base.Println("init MongoDB")
		mRepo, err := mongo.New(ctx, newLogger(base, "mongo"), cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, fmt.Errorf("failed init mongo: %w", err)
		}
		base.Println("MongoDB is initialized")
		return mRepo, nil
	case config.DriverMemory:
		base.Println("using in-memory store, data is lost on restart")
		return memory.New(newLogger(base, "memory")), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.DBDriver)
	}
}

func openStorage(ctx context.Context, base *log.Logger, cfg *config.Config) (domain.BlobStorage, error) {
	switch cfg.StorageDriver {
	case config.StorageDisk:
		base.Println("init disk storage")
		st, err := disk.New(cfg.ImagesDir, newLogger(base, "disk"))
		if err != nil {
			return nil, fmt.Errorf("failed init disk storage: %w", err)
		}
		return st, nil
	case config.StorageS3:
		base.Println("init S3 storage")
		s3cfg := s3storage.Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			PathStyle: cfg.S3PathStyle,
		}
		st, err := s3storage.New(ctx, s3cfg, newLogger(base, "s3"))
		if err != nil {
			return nil, fmt.Errorf("failed init s3: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

func (a *App) Run(ctx context.Context) error {
	a.log.Println("start application...")
	go a.server.Run()
	<-ctx.Done()
	a.log.Println("stop application...")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.server.Close(stopCtx)
	// дожидаемся фоновой очистки обложек
	a.books.Wait()
	a.repo.Close()
	if a.cache != nil {
		a.cache.Close()
	}

	return nil
}

// Migrate применяет миграции postgres без запуска сервера.
func Migrate(ctx context.Context) error {
	base := log.New(os.Stdout, "[migrate] ", log.LstdFlags)
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed load config: %w", err)
	}
	switch cfg.DBDriver {
	case config.DriverPostgres:
		return postgres.RunMigrations(cfg.GetDSN(), base)
	case config.DriverMongo:
		repo, err := mongo.New(ctx, base, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return fmt.Errorf("failed init mongo: %w", err)
		}
		repo.Close()
		return nil
	default:
		return errors.New("nothing to migrate for DB_DRIVER=" + cfg.DBDriver)
	}
}
