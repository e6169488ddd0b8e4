// Package database opens the PostgreSQL handle shared by the repositories,
// running an embedded server when no external one is configured.
package database

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vijay-1103/transmittal-craft/internal/config"
	"github.com/vijay-1103/transmittal-craft/internal/models"
)

const (
	DefaultEmbeddedDataPath = "./db_data"
	DefaultEmbeddedPort     = 5433
	embeddedPassword        = "postgres"
)

// Options tune Connect. Zero values use the defaults above.
type Options struct {
	EmbeddedDataPath string
	EmbeddedPort     uint32
	Logger           *zap.SugaredLogger
}

// DB wraps gorm.DB and the embedded process when one was started
type DB struct {
	*gorm.DB
	embedded *embeddedpostgres.EmbeddedPostgres
	log      *zap.SugaredLogger
}

// Connect establishes a connection to PostgreSQL (external or embedded)
func Connect(cfg config.DatabaseConfig, opts Options) (*DB, error) {
	if opts.EmbeddedDataPath == "" {
		opts.EmbeddedDataPath = DefaultEmbeddedDataPath
	}
	if opts.EmbeddedPort == 0 {
		opts.EmbeddedPort = DefaultEmbeddedPort
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	var embedded *embeddedpostgres.EmbeddedPostgres
	password := cfg.Password

	if cfg.Embedded() {
		log.Info("📦 Mode: [Embedded PostgreSQL] - starting internal database")

		cleanupStaleEmbedded(opts.EmbeddedDataPath, log)
		if err := waitForPort(opts.EmbeddedPort, log); err != nil {
			return nil, err
		}

		embedded = embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
			DataPath(opts.EmbeddedDataPath).
			Port(opts.EmbeddedPort).
			Database(cfg.Database).
			Username(cfg.Username).
			Password(embeddedPassword))
		if err := embedded.Start(); err != nil {
			return nil, fmt.Errorf("failed to start embedded database: %w", err)
		}

		cfg.Port = strconv.Itoa(int(opts.EmbeddedPort))
		password = embeddedPassword
		log.Infof("✅ Embedded PostgreSQL started on port %d", opts.EmbeddedPort)
	} else {
		log.Infof("🌐 Mode: [External PostgreSQL] - connecting to %s:%s", cfg.Host, cfg.Port)
	}

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, password, cfg.Database,
	)

	logLevel := logger.Warn
	if cfg.Silent {
		logLevel = logger.Silent
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		if embedded != nil {
			_ = embedded.Stop()
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(50)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Info("✅ Database connection established")
	return &DB{DB: db, embedded: embedded, log: log}, nil
}

// Migrate creates or updates every table the service owns
func (db *DB) Migrate() error {
	if err := db.DB.AutoMigrate(
		&models.Transmittal{},
		&models.TransmittalSequence{},
		&models.StatusCheck{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// Close shuts down the pool and the embedded process
func (db *DB) Close() error {
	var closeErr error
	if sqlDB, err := db.DB.DB(); err != nil {
		closeErr = err
	} else {
		closeErr = sqlDB.Close()
	}
	if db.embedded != nil {
		db.log.Info("🛑 Stopping embedded PostgreSQL")
		if err := db.embedded.Stop(); err != nil && closeErr == nil {
			closeErr = err
		}
	}
	return closeErr
}

// cleanupStaleEmbedded stops a postgres left running by a crashed previous run
func cleanupStaleEmbedded(dataPath string, log *zap.SugaredLogger) {
	pidFile := filepath.Join(dataPath, "postmaster.pid")
	data, err := os.ReadFile(pidFile)
	if err != nil {
		return
	}

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	if !scanner.Scan() {
		return
	}
	pid, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		log.Warnf("⚠️ Could not parse PID from postmaster.pid: %v", err)
		return
	}

	process, err := os.FindProcess(pid)
	if err != nil || process.Signal(syscall.Signal(0)) != nil {
		log.Infof("🧹 Removing stale postmaster.pid (PID %d not running)", pid)
		_ = os.Remove(pidFile)
		return
	}

	log.Warnf("⚠️ Found orphaned PostgreSQL (PID %d), stopping it", pid)
	_ = process.Signal(syscall.SIGTERM)
	for i := 0; i < 10; i++ {
		time.Sleep(500 * time.Millisecond)
		if process.Signal(syscall.Signal(0)) != nil {
			_ = os.Remove(pidFile)
			return
		}
	}

	log.Warn("⚠️ Orphaned PostgreSQL ignored SIGTERM, killing it")
	_ = process.Kill()
	time.Sleep(500 * time.Millisecond)
	_ = os.Remove(pidFile)
}

func waitForPort(port uint32, log *zap.SugaredLogger) error {
	for i := 0; i < 6 && portInUse(port); i++ {
		if i == 0 {
			log.Warnf("⚠️ Port %d still in use, waiting for release", port)
		}
		time.Sleep(500 * time.Millisecond)
	}
	if portInUse(port) {
		return fmt.Errorf("port %d is still in use by another process", port)
	}
	return nil
}

func portInUse(port uint32) bool {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", port), time.Second)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
