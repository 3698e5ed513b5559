package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/formflow/pkg/domain/interfaces"
	"github.com/secmon-lab/formflow/pkg/render"
	"github.com/secmon-lab/formflow/pkg/service/asset"
	"github.com/secmon-lab/formflow/pkg/service/formgen"
	"github.com/secmon-lab/formflow/pkg/utils/async"
)

const (
	DefaultFillSessionTTL = 2 * time.Hour
	DefaultAutosaveDelay  = time.Second
	DefaultBuilderIdleTTL = 30 * time.Minute
)

type UseCases struct {
	repo      interfaces.Repository
	assets    interfaces.AssetStore
	generator *formgen.Generator
	renderer  *render.Renderer
	group     *async.Group

	autosaveDelay       time.Duration
	builderIdleTTL      time.Duration
	fillSessionTTL      time.Duration
	confirmationMessage string

	Form     *FormUseCase
	Builder  *BuilderUseCase
	Response *ResponseUseCase
	Generate *GenerateUseCase
	Fill     *FillUseCase
	Asset    *AssetUseCase
	Auth     AuthUseCaseInterface
}

type Option func(*UseCases)

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

func WithAssetStore(store interfaces.AssetStore) Option {
	return func(uc *UseCases) {
		uc.assets = store
	}
}

func WithGenerator(g *formgen.Generator) Option {
	return func(uc *UseCases) {
		uc.generator = g
	}
}

func WithRenderer(r *render.Renderer) Option {
	return func(uc *UseCases) {
		uc.renderer = r
	}
}

// WithAsyncGroup tracks background saves so that shutdown can wait for them
func WithAsyncGroup(g *async.Group) Option {
	return func(uc *UseCases) {
		uc.group = g
	}
}

func WithAutosaveDelay(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.autosaveDelay = d
	}
}

// WithBuilderIdleTTL sets how long an unused builder session is kept in memory
func WithBuilderIdleTTL(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.builderIdleTTL = d
	}
}

func WithFillSessionTTL(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.fillSessionTTL = d
	}
}

// WithConfirmationMessage sets the confirmation message of newly created forms
func WithConfirmationMessage(msg string) Option {
	return func(uc *UseCases) {
		uc.confirmationMessage = msg
	}
}

func New(repo interfaces.Repository, opts ...Option) (*UseCases, error) {
	uc := &UseCases{
		repo:           repo,
		autosaveDelay:  DefaultAutosaveDelay,
		builderIdleTTL: DefaultBuilderIdleTTL,
		fillSessionTTL: DefaultFillSessionTTL,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.assets == nil {
		uc.assets = asset.NewMemory()
	}
	if uc.generator == nil {
		uc.generator = formgen.New()
	}
	if uc.group == nil {
		uc.group = &async.Group{}
	}
	if uc.renderer == nil {
		r, err := render.New()
		if err != nil {
			return nil, err
		}
		uc.renderer = r
	}
	if uc.Auth == nil {
		uc.Auth = NewNoAuthnUseCase()
	}

	uc.Form = NewFormUseCase(repo)
	uc.Response = NewResponseUseCase(repo, uc.Form)
	uc.Generate = NewGenerateUseCase(uc.generator)
	uc.Asset = NewAssetUseCase(uc.assets)
	uc.Builder = NewBuilderUseCase(repo, uc.Form, uc.renderer, uc.generator,
		withBuilderDelay(uc.autosaveDelay),
		withBuilderIdleTTL(uc.builderIdleTTL),
		withBuilderGroup(uc.group),
		withBuilderConfirmation(uc.confirmationMessage),
	)
	uc.Fill = NewFillUseCase(uc.Form, uc.Response, uc.renderer, uc.fillSessionTTL)

	return uc, nil
}

// PurgeExpired drops expired fill flows and idle builder sessions
func (uc *UseCases) PurgeExpired(ctx context.Context) int {
	return uc.Fill.PurgeExpired(ctx) + uc.Builder.PurgeExpired(ctx)
}

// Shutdown saves pending builder changes and waits for background work
func (uc *UseCases) Shutdown(ctx context.Context) error {
	uc.Builder.Close(ctx)
	return uc.group.Wait(ctx)
}
