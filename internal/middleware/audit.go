package middleware

import (
	"context"
	"reflect"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ==================== 审计上下文 ====================

// AuditContext Key
type auditContextKey struct{}

// WithAuditOperator 注入运营人员到 context
func WithAuditOperator(ctx context.Context, operator string) context.Context {
	return context.WithValue(ctx, auditContextKey{}, operator)
}

// GetAuditOperator 从 context 获取运营人员
func GetAuditOperator(ctx context.Context) string {
	operator, _ := ctx.Value(auditContextKey{}).(string)
	return operator
}

// ==================== Gin 中间件 ====================

// AuditContext 审计上下文中间件，需放在 OperatorAuth 之后
// 将 Token 中的运营人员注入到 request context，供 GORM 回调使用
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		if operator := GetOperator(c); operator != "" {
			c.Request = c.Request.WithContext(WithAuditOperator(c.Request.Context(), operator))
		}
		c.Next()
	}
}

// ==================== GORM 回调 ====================

// RegisterAuditCallbacks 注册 GORM 审计回调
// 在 Create/Update 时自动填充 CreatedBy/UpdatedBy
func RegisterAuditCallbacks(db *gorm.DB) error {
	// Create 回调
	err := db.Callback().Create().Before("gorm:create").Register("audit:create", func(tx *gorm.DB) {
		operator := auditOperator(tx)
		if operator == "" {
			return
		}
		setAuditField(tx, "CreatedBy", operator)
		setAuditField(tx, "UpdatedBy", operator)
	})
	if err != nil {
		return err
	}

	// Update 回调；Update/Updates 传 map 时也要写进 SET 子句
	return db.Callback().Update().Before("gorm:update").Register("audit:update", func(tx *gorm.DB) {
		operator := auditOperator(tx)
		if operator == "" || tx.Statement.Schema == nil {
			return
		}
		if tx.Statement.Schema.LookUpField("UpdatedBy") == nil {
			return
		}
		tx.Statement.SetColumn("UpdatedBy", operator, true)
	})
}

func auditOperator(tx *gorm.DB) string {
	if tx.Statement.Context == nil {
		return ""
	}
	return GetAuditOperator(tx.Statement.Context)
}

// setAuditField 设置审计字段（仅填充零值）
func setAuditField(tx *gorm.DB, fieldName string, value string) {
	if tx.Statement.Schema == nil {
		return
	}

	field := tx.Statement.Schema.LookUpField(fieldName)
	if field == nil {
		return
	}

	switch tx.Statement.ReflectValue.Kind() {
	case reflect.Struct:
		// 单个对象
		if _, isZero := field.ValueOf(tx.Statement.Context, tx.Statement.ReflectValue); isZero {
			_ = field.Set(tx.Statement.Context, tx.Statement.ReflectValue, value)
		}
	case reflect.Slice:
		// 批量插入
		for i := 0; i < tx.Statement.ReflectValue.Len(); i++ {
			rv := tx.Statement.ReflectValue.Index(i)
			if _, isZero := field.ValueOf(tx.Statement.Context, rv); isZero {
				_ = field.Set(tx.Statement.Context, rv, value)
			}
		}
	}
}
