package database

import (
	"context"
	"fmt"
	"net/http"

	"printmatch-workers/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

type ElasticsearchClient struct {
	Client *elasticsearch.Client
	index  string
}

// NewElasticsearch builds a client whose readiness also requires the
// producer index to exist.
func NewElasticsearch(cfg config.ElasticsearchConfig, producerIndex string) (*ElasticsearchClient, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}
	if len(esCfg.Addresses) == 0 && cfg.URL != "" {
		esCfg.Addresses = []string{cfg.URL}
	}

	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &ElasticsearchClient{Client: es, index: producerIndex}, nil
}

func (c *ElasticsearchClient) Name() string { return "elasticsearch" }

func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}

	if c.index == "" {
		return nil
	}
	exists, err := c.Client.Indices.Exists([]string{c.index}, c.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch index check failed: %w", err)
	}
	defer exists.Body.Close()

	if exists.StatusCode == http.StatusNotFound {
		return fmt.Errorf("elasticsearch index %s does not exist", c.index)
	}
	if exists.IsError() {
		return fmt.Errorf("elasticsearch index check error: %s", exists.Status())
	}
	return nil
}
