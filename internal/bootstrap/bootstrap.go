package bootstrap

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	geminiclient "github.com/paytrackhq/sms-finance-backend/internal/client/gemini"
	vertexclient "github.com/paytrackhq/sms-finance-backend/internal/client/vertex"
	"github.com/paytrackhq/sms-finance-backend/internal/config"
	"github.com/paytrackhq/sms-finance-backend/internal/store"
	"github.com/paytrackhq/sms-finance-backend/pkg/logger"
)

type Bootstrap struct {
	Log    *slog.Logger
	DB     *gorm.DB
	Vertex *vertexclient.Adapter
	Gemini *geminiclient.Adapter
}

func Run(cfg *config.Config) (*Bootstrap, error) {
	var err error
	applicationCtx := context.Background()
	bs := new(Bootstrap)

	bs.Log = logger.New(cfg.LogLevel, logger.NewCloudRunHandler)

	bs.DB, err = InitPostgres(cfg.DatabaseURL)
	if err != nil {
		return bs, err
	}
	if err = store.Migrate(bs.DB); err != nil {
		return bs, err
	}

	bs.Vertex, err = vertexclient.NewAdapter(applicationCtx, bs.Log, cfg.ProjectID, cfg.Region, cfg.VertexModel)
	if err != nil {
		return bs, err
	}
	bs.Gemini, err = geminiclient.NewAdapter(applicationCtx, bs.Log, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return bs, err
	}

	return bs, nil
}

func (bs *Bootstrap) Close() {
	if bs.Vertex != nil {
		bs.Vertex.Close()
	}
	if bs.DB != nil {
		if sqlDB, err := bs.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
