package es

import (
	"Airena/internal/api/config"
	"Airena/internal/pkg/logger"
	"context"
	log "log/slog"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
)

var Client *elasticsearch.TypedClient

var PostIndex string

const (
	NotFoundCode = 404
	ConflictCode = 409
)

// InitClient 初始化 Elasticsearch 客户端
func InitClient() error {
	elasticCfg := config.Cfg.Elastic

	PostIndex = elasticCfg.Indices.PostIndex

	cfg := elasticsearch.Config{
		Addresses: []string{elasticCfg.Address},
		Username:  elasticCfg.Username,
		Password:  elasticCfg.Password,
		Transport: &logger.ESTransport{
			Transport: http.DefaultTransport,
		},
	}

	var err error
	Client, err = elasticsearch.NewTypedClient(cfg)
	if err != nil {
		log.Error("Cannot Connect to Elasticsearch", "err", err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	info, err := Client.Info().Do(ctx)
	if err != nil {
		log.Error("Cannot Connect to Elasticsearch", "err", err)
		return err
	}

	if err = ensurePostIndex(ctx); err != nil {
		log.Error("Cannot Create Post Index", "index", PostIndex, "err", err)
		return err
	}

	log.Info("Connected to Elasticsearch", "version", info.Version.Int)
	return nil
}

// ensurePostIndex 索引不存在时按 Mapping 创建
func ensurePostIndex(ctx context.Context) error {
	exists, err := Client.Indices.Exists(PostIndex).Do(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = Client.Indices.Create(PostIndex).
		Mappings(&types.TypeMapping{
			Properties: map[string]types.Property{
				"id":            types.NewKeywordProperty(),
				"slug":          types.NewKeywordProperty(),
				"title":         types.NewTextProperty(),
				"plain_content": types.NewTextProperty(),
				"image_url":     types.NewKeywordProperty(),
				"author_id":     types.NewKeywordProperty(),
				"author_name":   types.NewKeywordProperty(),
				"is_featured":   types.NewBooleanProperty(),
				"created_at":    types.NewDateProperty(),
				"updated_at":    types.NewDateProperty(),
			},
		}).
		Do(ctx)
	if err != nil {
		return err
	}
	log.Info("Elasticsearch index created", "index", PostIndex)
	return nil
}
