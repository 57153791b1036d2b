package cmd

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	coreConfig "github.com/fbautopost/backend/core/config"
	coreDB "github.com/fbautopost/backend/core/database"
	domainHealth "github.com/fbautopost/backend/domains/health"
	domainPost "github.com/fbautopost/backend/domains/post"
	domainScheduler "github.com/fbautopost/backend/domains/scheduler"
	"github.com/fbautopost/backend/infrastructure/facebook"
	"github.com/fbautopost/backend/infrastructure/history"
	"github.com/fbautopost/backend/infrastructure/postqueue"
	"github.com/fbautopost/backend/infrastructure/valkey"
	"github.com/fbautopost/backend/pkg/linkpreview"
	"github.com/fbautopost/backend/pkg/utils"
	"github.com/fbautopost/backend/usecase"
)

var (
	// Flag overrides, applied on top of the env configuration.
	flagPort      string
	flagDebug     bool
	flagBasicAuth []string
	flagBasePath  string

	// Infrastructure
	postQueue    *postqueue.PostQueue
	fbClient     *facebook.Client
	vkClient     *valkey.Client
	archiveRepo  *history.Repository
	serverID     string

	// Usecases
	queueUsecase  domainScheduler.IQueueUsecase
	postUsecase   domainPost.IPostUsecase
	healthUsecase domainHealth.IHealthUsecase
)

var rootCmd = &cobra.Command{
	Use:   "fbautopost",
	Short: "Facebook Page automation backend",
	Long:  `HTTP API for publishing and scheduling posts to a Facebook Page over the Graph API.`,
}

func init() {
	// Load environment variables first
	utils.LoadConfig(".")

	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&flagPort,
		"port", "p",
		"",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&flagDebug,
		"debug", "d",
		false,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringSliceVarP(
		&flagBasicAuth,
		"basic-auth", "b",
		nil,
		"basic auth credential | -b=yourUsername:yourPassword",
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagBasePath,
		"base-path", "",
		"",
		`base path for subpath deployment --base-path <string> | example: --base-path="/fbap"`,
	)
}

// initEnvConfig builds the configuration from the environment, then layers
// viper-visible values and CLI flags on top.
func initEnvConfig() {
	cfg, err := coreConfig.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	if envPort := viper.GetString("app_port"); envPort != "" {
		cfg.App.Port = envPort
	}
	if viper.GetBool("app_debug") {
		cfg.App.Debug = true
	}
	if envBasicAuth := viper.GetString("app_basic_auth"); envBasicAuth != "" {
		cfg.App.BasicAuth = strings.Split(envBasicAuth, ",")
	}

	if flagPort != "" {
		cfg.App.Port = flagPort
	}
	if flagDebug {
		cfg.App.Debug = true
	}
	if len(flagBasicAuth) > 0 {
		cfg.App.BasicAuth = flagBasicAuth
	}
	if flagBasePath != "" {
		cfg.App.BasePath = flagBasePath
	}
}

func initApp() {
	cfg := coreConfig.Global

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := utils.CreateFolder(cfg.Paths.Storages, cfg.Paths.Statics, cfg.Paths.Media); err != nil {
		logrus.Errorln(err)
	}

	configIssues := cfg.ValidateFacebook()
	for _, issue := range configIssues {
		logrus.Warnf("[CONFIG] %s", issue)
	}
	if len(configIssues) > 0 {
		logrus.Warn("[CONFIG] Publishing endpoints will fail until the Facebook credentials are fixed")
	}
	logrus.Infof("[CONFIG] Loaded: %v", cfg.Summary())

	// Scheduled post queue; a corrupt file is fatal since every scheduling
	// operation depends on it.
	var err error
	postQueue, err = postqueue.NewPostQueue(postqueue.Config{
		StoragePath: cfg.Queue.StoragePath,
		MinLeadTime: cfg.Queue.MinLeadTime,
		MaxHorizon:  cfg.Queue.MaxHorizon,
	})
	if err != nil {
		logrus.Fatalf("Failed to open scheduled post queue: %v", err)
	}

	// Publish history archive
	db, err := coreDB.NewDatabase(cfg)
	if err != nil {
		logrus.Fatalf("Failed to open history database: %v", err)
	}
	archiveRepo, err = history.NewRepository(db)
	if err != nil {
		logrus.Fatalf("Failed to init history repository: %v", err)
	}

	// Optional Valkey for caching and multi-instance event fan-out
	if cfg.Valkey.Enabled {
		vkClient, err = valkey.NewClient(valkey.Config{
			Address:   cfg.Valkey.Address,
			Password:  cfg.Valkey.Password,
			DB:        cfg.Valkey.DB,
			KeyPrefix: cfg.Valkey.KeyPrefix,
		})
		if err != nil {
			logrus.Warnf("[VALKEY] Disabled, connection failed: %v", err)
			vkClient = nil
		}
	}

	serverID = utils.GetPersistentServerID(cfg.App.ServerID, cfg.Paths.Storages)
	fbClient = facebook.NewClient(cfg.Facebook)

	if len(configIssues) == 0 {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := fbClient.ValidateToken(ctx); err != nil {
				logrus.Warnf("[FACEBOOK] Page access token check failed: %v", err)
			} else {
				logrus.Info("[FACEBOOK] Page access token verified")
			}
		}()
	}

	queueUsecase = usecase.NewSchedulerService(postQueue)
	postUsecase = usecase.NewPostService(fbClient, archiveRepo, vkClient, linkpreview.NewFetcher())
	healthUsecase = usecase.NewHealthService(queueUsecase)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of connections and services.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if vkClient != nil {
		vkClient.Close()
	}

	if coreDB.GlobalDB != nil {
		if sqlDB, err := coreDB.GlobalDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
