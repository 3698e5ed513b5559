package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/formflow/pkg/domain/interfaces"
	"github.com/secmon-lab/formflow/pkg/service/asset"
	"github.com/secmon-lab/formflow/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage selects where uploaded images are kept
type Storage struct {
	bucket string
	prefix string
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "asset-bucket",
			Usage:       "Cloud Storage bucket for uploaded images (in-memory when empty)",
			Category:    "Storage",
			Sources:     cli.EnvVars("FORMFLOW_ASSET_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "asset-prefix",
			Usage:       "Object name prefix inside the asset bucket",
			Value:       "assets",
			Category:    "Storage",
			Sources:     cli.EnvVars("FORMFLOW_ASSET_PREFIX"),
			Destination: &x.prefix,
		},
	}
}

func (x Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
	)
}

// Configure returns the asset store and a function releasing it
func (x *Storage) Configure(ctx context.Context) (interfaces.AssetStore, func(), error) {
	if x.bucket == "" {
		logging.Default().Warn("Asset bucket not configured, uploaded images are kept in memory")
		return asset.NewMemory(), func() {}, nil
	}

	store, err := asset.NewGCS(ctx, x.bucket, asset.WithPrefix(x.prefix))
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize asset storage")
	}
	closer := func() {
		if err := store.Close(); err != nil {
			logging.Default().Error("failed to close asset storage", "error", err.Error())
		}
	}
	return store, closer, nil
}
