package database

import "embed"

// MigrationSQL 嵌入 AutoMigrate 之后执行的 SQL（部分索引等 GORM 标签表达不了的结构）
//
//go:embed migrations/*.sql
var MigrationSQL embed.FS
