// Package dbtest 为测试提供迁移好的内存 SQLite 数据库
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"group_chat_server/internal/dao/mysql/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var seq atomic.Int64

// Open 每次调用得到独立的数据库，测试结束时关闭
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_busy_timeout=5000", name, seq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// 内存库在最后一个连接关闭时销毁，且 SQLite 只允许单写
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Repositories 基于内存库的 Repository 聚合
func Repositories(t testing.TB) (*repository.Repositories, *gorm.DB) {
	db := Open(t)
	return repository.NewRepositories(db), db
}
