package service

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// lookupStep 按优先级排列的查找策略之一
type lookupStep[T any] struct {
	name string
	find func(ctx context.Context) (T, bool, error)
}

// firstMatch 依次尝试各策略，返回第一个命中的值与策略名；
// 任一策略出错立即返回，不再尝试后续策略
func firstMatch[T any](ctx context.Context, steps ...lookupStep[T]) (T, string, bool, error) {
	var zero T
	for _, step := range steps {
		v, ok, err := step.find(ctx)
		if err != nil {
			return zero, step.name, false, err
		}
		if ok {
			return v, step.name, true, nil
		}
	}
	return zero, "", false, nil
}

// found 把 gorm 的未找到转换为 (false, nil)
func found(err error) (bool, error) {
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}
