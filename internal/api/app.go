package api

import (
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/cache"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/config"
	"github.com/jayvicsanantonio/tracknstick-api-sub000/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Store() storage.Store
	Results() *cache.Cache
	Config() *config.Config
}

type application struct {
	logger  internal.Logger
	store   storage.Store
	results *cache.Cache
	cfg     *config.Config
}

func NewApp(logger internal.Logger, store storage.Store, results *cache.Cache, cfg *config.Config) App {
	return &application{logger: logger, store: store, results: results, cfg: cfg}
}

func (a *application) Logger() internal.Logger { return a.logger }
func (a *application) Store() storage.Store    { return a.store }
func (a *application) Results() *cache.Cache   { return a.results }
func (a *application) Config() *config.Config  { return a.cfg }
