package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/interfaces"
	"github.com/secmon-lab/formflow/pkg/service/asset"
)

type AssetUseCase struct {
	store interfaces.AssetStore
}

func NewAssetUseCase(store interfaces.AssetStore) *AssetUseCase {
	return &AssetUseCase{store: store}
}

// Upload stores an image for an image field and returns its URL
func (uc *AssetUseCase) Upload(ctx context.Context, declaredType string, data []byte) (string, error) {
	if _, err := requireSession(ctx); err != nil {
		return "", err
	}
	if len(data) > asset.MaxSize {
		return "", goerr.Wrap(ErrAssetTooLarge, "upload asset", goerr.V(SizeKey, len(data)))
	}

	contentType, err := asset.Sniff(declaredType, data)
	if err != nil {
		return "", goerr.Wrap(ErrInvalidInput, err.Error())
	}
	name, err := asset.NewName(contentType)
	if err != nil {
		return "", goerr.Wrap(ErrInvalidInput, err.Error())
	}

	url, err := uc.store.Put(ctx, name, contentType, data)
	if err != nil {
		return "", goerr.Wrap(err, "failed to store asset")
	}
	return url, nil
}

// Get returns a stored asset with its content type
func (uc *AssetUseCase) Get(ctx context.Context, name string) ([]byte, string, error) {
	if err := asset.ValidateName(name); err != nil {
		return nil, "", goerr.Wrap(ErrAssetNotFound, err.Error())
	}
	data, contentType, err := uc.store.Get(ctx, name)
	if err != nil {
		if errors.Is(err, asset.ErrNotFound) {
			return nil, "", goerr.Wrap(ErrAssetNotFound, "get asset", goerr.V("name", name))
		}
		return nil, "", goerr.Wrap(err, "failed to get asset")
	}
	return data, contentType, nil
}
