// tourd 是行程推荐引擎的 HTTP 服务入口。
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rushteam/tourkit/catalog"
	"github.com/rushteam/tourkit/config"
	_ "github.com/rushteam/tourkit/config/builders"
	"github.com/rushteam/tourkit/core"
	"github.com/rushteam/tourkit/embedding"
	"github.com/rushteam/tourkit/engine"
	"github.com/rushteam/tourkit/external"
	"github.com/rushteam/tourkit/feast"
	"github.com/rushteam/tourkit/guard"
	"github.com/rushteam/tourkit/pipeline"
	"github.com/rushteam/tourkit/server"
	"github.com/rushteam/tourkit/store"
)

func main() {
	// .env 缺失不是错误：容器环境通常直接注入环境变量
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("TOURD_CONFIG"), "配置文件路径（YAML）")
	catalogPath := flag.String("catalog", os.Getenv("TOURD_CATALOG"), "展品目录 JSON 文件路径")
	flag.Parse()

	log := zerolog.New(os.Stderr).With().Timestamp().Str("app", "tourd").Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("配置加载失败")
	}

	exhibits, err := loadCatalog(*catalogPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *catalogPath).Msg("目录加载失败")
	}
	log.Info().Int("exhibits", len(exhibits)).Msg("目录已加载")

	opts := []engine.Option{
		engine.WithWeights(cfg.Engine.Weights),
		engine.WithExcludeRules(cfg.Engine.Exclude),
		engine.WithLogger(log),
	}

	// 向量索引：文件缺失时降级为 规则+外部 打分
	if cfg.Engine.EmbeddingPath != "" {
		idx, err := embedding.LoadIndex(cfg.Engine.EmbeddingPath)
		if err != nil {
			log.Fatal().Err(err).Msg("向量索引加载失败")
		}
		if idx.Len() > 0 {
			opts = append(opts, engine.WithIndex(idx))
			log.Info().Int("vectors", idx.Len()).Msg("向量索引已加载")
		} else {
			log.Warn().Str("path", cfg.Engine.EmbeddingPath).Msg("向量索引缺失，相似度打分停用")
		}
	}

	// 配置驱动的本地打分链：经注册表构建，覆写默认链
	if cfg.Engine.PipelinePath != "" {
		pcfg, err := pipeline.LoadFromYAML(cfg.Engine.PipelinePath)
		if err != nil {
			log.Fatal().Err(err).Msg("pipeline 配置加载失败")
		}
		if err := config.ValidatePipelineConfig(pcfg); err != nil {
			log.Fatal().Err(err).Msg("pipeline 配置校验失败")
		}
		p, err := pcfg.BuildPipeline(config.DefaultFactory())
		if err != nil {
			log.Fatal().Err(err).Msg("pipeline 构建失败")
		}
		opts = append(opts, engine.WithPipeline(p))
		log.Info().Str("pipeline", pcfg.Pipeline.Name).Int("nodes", len(pcfg.Pipeline.Nodes)).Msg("配置驱动链路已加载")
	}

	if cfg.Engine.External.Endpoint != "" {
		opts = append(opts, engine.WithExternal(external.NewSemanticClient(
			cfg.Engine.External.Endpoint,
			external.WithTimeout(cfg.Engine.External.Timeout()),
		)))
		opts = append(opts, engine.WithExternalTimeout(cfg.Engine.External.Timeout()))
	}

	// 存储与限流计数：配了 Redis 就共用一个连接，否则全内存
	var counter guard.CounterStore
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		opts = append(opts, engine.WithStore(store.NewRedisStoreFromClient(client)))
		counter = guard.NewRedisCounterStore(client)
	} else {
		ms := store.NewMemoryStore()
		defer ms.Close()
		opts = append(opts, engine.WithStore(ms))
		counter = guard.NewMemoryCounterStore(core.RealClock{})
	}
	opts = append(opts, engine.WithLimiter(guard.NewRateLimiter(
		counter, cfg.RateLimit.Window(), cfg.RateLimit.Limit, core.RealClock{})))

	if cfg.Feast.Host != "" {
		enricher, err := feast.NewEnricher(cfg.Feast.Host, cfg.Feast.Port, cfg.Feast.Project)
		if err != nil {
			log.Warn().Err(err).Msg("特征存储连接失败，画像补全停用")
		} else {
			defer enricher.Close()
			opts = append(opts, engine.WithEnricher(enricher))
		}
	}

	e := engine.New(catalog.NewMemoryCatalog(exhibits), opts...)
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.New(e, log).Router(),
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("服务启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("服务异常退出")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("优雅关停失败")
	}
	log.Info().Msg("服务已退出")
}
