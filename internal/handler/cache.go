package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/exam-proctor/backend/internal/scheduler"
)

// 最近一次自动生成的结果，只在计划版本一致时有效
type preview struct {
	PlanVersion int32             `json:"planVersion"`
	Result      *scheduler.Result `json:"result"`
}

// validFor 预览只对生成时的计划版本有效，修改配置或名单都会递增版本号
func (p *preview) validFor(planVersion int32) bool {
	return p != nil && p.Result != nil && p.PlanVersion == planVersion
}

func previewKey(planID int64) string {
	return fmt.Sprintf("assignment_preview_%d", planID)
}

func lockKey(planID int64) string {
	return fmt.Sprintf("assignment_lock_%d", planID)
}

func (h *Handler) redisContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, time.Duration(h.config.Redis.OperationExpiration)*time.Second)
}

func (h *Handler) savePreview(parent context.Context, planID int64, p *preview) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	ctx, cancel := h.redisContext(parent)
	defer cancel()

	return h.redisClient.Set(ctx, previewKey(planID), data, time.Duration(h.config.Scheduler.CacheExpiration)*time.Second).Err()
}

// loadPreview 不存在或已过期时返回 nil
func (h *Handler) loadPreview(parent context.Context, planID int64, planVersion int32) (*preview, error) {
	ctx, cancel := h.redisContext(parent)
	defer cancel()

	data, err := h.redisClient.Get(ctx, previewKey(planID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	p := &preview{}
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	if !p.validFor(planVersion) {
		return nil, nil
	}

	return p, nil
}

func (h *Handler) invalidatePreview(parent context.Context, planID int64) {
	ctx, cancel := h.redisContext(parent)
	defer cancel()

	if err := h.redisClient.Del(ctx, previewKey(planID)).Err(); err != nil {
		slog.Error("无法删除缓存的分配结果", "planID", planID, "error", err)
	}
}

// acquireLock 同一个考试计划同时只允许一个生成任务
func (h *Handler) acquireLock(parent context.Context, planID int64) (bool, error) {
	ctx, cancel := h.redisContext(parent)
	defer cancel()

	return h.redisClient.SetNX(ctx, lockKey(planID), "1", time.Duration(h.config.Scheduler.LockExpiration)*time.Second).Result()
}

func (h *Handler) releaseLock(planID int64) {
	ctx, cancel := h.redisContext(context.Background())
	defer cancel()

	if err := h.redisClient.Del(ctx, lockKey(planID)).Err(); err != nil {
		slog.Error("无法释放分配锁", "planID", planID, "error", err)
	}
}
