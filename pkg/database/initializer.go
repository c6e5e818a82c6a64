package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"marketplace_shipping_v1/pkg/logger"
)

// Initializer 数据库初始化器：AutoMigrate 之后按文件名顺序执行 SQL 脚本
type Initializer struct {
	db      *gorm.DB
	log     logger.Logger
	models  []interface{}
	scripts fs.FS
	root    string
}

// InitOptions 初始化选项
type InitOptions struct {
	// 嵌入文件系统（推荐）
	EmbedFS   *embed.FS
	EmbedRoot string

	// 外部目录（可选，用于开发调试）
	SQLDir string

	// 需要 AutoMigrate 的 Model
	Models []interface{}
}

// NewInitializer 创建初始化器
func NewInitializer(db *gorm.DB, log logger.Logger, opts InitOptions) (*Initializer, error) {
	init := &Initializer{db: db, log: log, models: opts.Models}

	switch {
	case opts.EmbedFS != nil:
		init.scripts, init.root = *opts.EmbedFS, opts.EmbedRoot
	case opts.SQLDir != "":
		init.scripts, init.root = os.DirFS(opts.SQLDir), "."
	default:
		return nil, fmt.Errorf("必须指定 EmbedFS 或 SQLDir")
	}
	return init, nil
}

// Initialize 执行初始化
func (i *Initializer) Initialize(ctx context.Context) error {
	i.log.Infof(ctx, "[DB] 开始数据库初始化...")
	start := time.Now()

	// 1. AutoMigrate
	if len(i.models) > 0 {
		i.log.Infof(ctx, "[DB] 1/2 AutoMigrate %d 个表...", len(i.models))
		if err := i.db.WithContext(ctx).AutoMigrate(i.models...); err != nil {
			return fmt.Errorf("AutoMigrate 失败: %w", err)
		}
	}

	// 2. SQL 脚本
	files, err := i.scriptFiles()
	if err != nil {
		return err
	}
	i.log.Infof(ctx, "[DB] 2/2 执行 %d 个 SQL 脚本...", len(files))
	for _, name := range files {
		if err := i.runScript(ctx, name); err != nil {
			return err
		}
	}

	i.log.Infof(ctx, "[DB] 初始化完成，耗时 %v", time.Since(start))
	return nil
}

func (i *Initializer) scriptFiles() ([]string, error) {
	entries, err := fs.ReadDir(i.scripts, i.root)
	if err != nil {
		return nil, fmt.Errorf("读取 SQL 目录失败: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (i *Initializer) runScript(ctx context.Context, name string) error {
	content, err := fs.ReadFile(i.scripts, path.Join(i.root, name))
	if err != nil {
		return fmt.Errorf("读取 %s 失败: %w", name, err)
	}
	for _, stmt := range SplitStatements(string(content)) {
		if err := i.db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("执行 %s 失败: %w", name, err)
		}
	}
	return nil
}

// SplitStatements 按分号切分语句，去掉 -- 注释行和空语句
func SplitStatements(script string) []string {
	var b strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	var stmts []string
	for _, part := range strings.Split(b.String(), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// QuickInit 使用内置脚本初始化
func QuickInit(db *gorm.DB, log logger.Logger, models []interface{}) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	init, err := NewInitializer(db, log, InitOptions{
		EmbedFS:   &MigrationSQL,
		EmbedRoot: "migrations",
		Models:    models,
	})
	if err != nil {
		return err
	}
	return init.Initialize(ctx)
}
