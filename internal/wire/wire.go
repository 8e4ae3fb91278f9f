package wire

import (
	"Airena/internal/api"
	"Airena/internal/api/config"
	"Airena/internal/api/handler"
	"Airena/internal/job"
	"Airena/internal/pkg/cron"
	"Airena/internal/pkg/es"
	"Airena/internal/pkg/kafka"
	"Airena/internal/pkg/minio"
	"Airena/internal/pkg/mongo"
	"Airena/internal/pkg/redis"
	"Airena/internal/repository"
	"Airena/internal/service"
	"time"

	"github.com/gin-gonic/gin"
	mongoDB "go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// featuredLockRetries 抢精选锁的重试次数，每次间隔 200ms
const featuredLockRetries = 10

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	Producer     *kafka.Producer
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, mongoDb *mongoDB.Database, cfg *config.Config) (*ApplicationContainer, error) {
	timeout := cfg.Server.StoreTimeoutDuration()

	// mysql
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	userRolesRepo := repository.NewUserRolesRepo(db)

	// mongo
	postDBRepo := mongo.NewPostRepo(mongoDb)
	videoDBRepo := mongo.NewVideoRepo(mongoDb)
	channelDBRepo := mongo.NewChannelRepo(mongoDb)
	appDBRepo := mongo.NewApplicationRepo(mongoDb)

	// es
	postESRepo := es.NewPostRepo(es.Client)

	producer, err := kafka.NewProducer(cfg)
	if err != nil {
		return nil, err
	}

	store := minio.NewStore()
	locker := redis.NewLocker(featuredLockRetries)
	blacklist := redis.NewTokenBlacklist()

	identityService := service.NewIdentityService(userRepo, roleRepo, userRolesRepo, blacklist, timeout)
	userService := service.NewUserService(userRepo, identityService, store,
		cfg.Upload.MaxImageSize, cfg.Upload.ImageMaxWidth, timeout)
	postService := service.NewPostService(postDBRepo, postESRepo, store, locker, producer,
		cfg.Upload.MaxImageSize, cfg.Upload.ImageMaxWidth, timeout)
	videoService := service.NewVideoService(videoDBRepo, identityService, store, producer,
		service.VideoURLPolicy{
			UsePublicLink: cfg.MinIO.UsePublicLink,
			SignedExpiry:  time.Duration(cfg.MinIO.SignedURLExpiry) * time.Hour,
		},
		cfg.Upload.MaxVideoSize, timeout)
	applicationService := service.NewApplicationService(appDBRepo, channelDBRepo, identityService, timeout)
	channelService := service.NewChannelService(channelDBRepo, timeout)

	handlers := &api.HandlersGroup{
		Verifier:           identityService,
		UserHandler:        handler.NewUserHandler(userService),
		PostHandler:        handler.NewPostHandler(postService),
		VideoHandler:       handler.NewVideoHandler(videoService),
		ApplicationHandler: handler.NewApplicationHandler(applicationService),
		ChannelHandler:     handler.NewChannelHandler(channelService),
	}

	router := api.SetupRouter(handlers)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, postDBRepo, videoDBRepo, postESRepo)
	if err != nil {
		_ = producer.Close()
		return nil, err
	}

	// 任务超时放宽到存储超时的数倍，对账需要多次查询
	cronMgr := cron.NewCronManager(
		job.NewCreatorReconcileJob(applicationService, 6*timeout),
		job.NewFeaturedAuditJob(postService, 2*timeout),
	)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		Producer:     producer,
		CronMgr:      cronMgr,
	}, nil
}
