package redis

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// TaskCache wraps a TaskRepository and caches each user's full board list in Redis.
// Every write through the cache evicts the owner's entry.
type TaskCache struct {
	repository.TaskRepository
	redis *redislib.Client
	ttl   time.Duration
}

// NewTaskCache creates a caching wrapper. A zero ttl disables storing but keeps eviction.
func NewTaskCache(base repository.TaskRepository, client *redislib.Client, ttl time.Duration) *TaskCache {
	if base == nil {
		panic("redis.NewTaskCache: base repository is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &TaskCache{TaskRepository: base, redis: client, ttl: ttl}
}

func (c *TaskCache) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	if !cacheable(filter) {
		return c.TaskRepository.List(ctx, filter)
	}
	if tasks, ok := c.load(ctx, filter.UserID); ok {
		return tasks, nil
	}

	tasks, err := c.TaskRepository.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	c.store(ctx, filter.UserID, tasks)
	return tasks, nil
}

func (c *TaskCache) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	created, err := c.TaskRepository.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, created.UserID)
	return created, nil
}

func (c *TaskCache) Update(ctx context.Context, task *domain.Task) error {
	if err := c.TaskRepository.Update(ctx, task); err != nil {
		return err
	}
	c.evict(ctx, task.UserID)
	return nil
}

func (c *TaskCache) Delete(ctx context.Context, userID, id string) error {
	defer c.evict(ctx, userID)
	return c.TaskRepository.Delete(ctx, userID, id)
}

func (c *TaskCache) UpdateStatus(ctx context.Context, userID, id string, status domain.Status) error {
	defer c.evict(ctx, userID)
	return c.TaskRepository.UpdateStatus(ctx, userID, id, status)
}

func (c *TaskCache) Move(ctx context.Context, userID, id string, status domain.Status, index int) error {
	defer c.evict(ctx, userID)
	return c.TaskRepository.Move(ctx, userID, id, status, index)
}

func (c *TaskCache) Reorder(ctx context.Context, userID string, ids []string) error {
	defer c.evict(ctx, userID)
	return c.TaskRepository.Reorder(ctx, userID, ids)
}

func (c *TaskCache) load(ctx context.Context, userID string) ([]domain.Task, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, tasksCacheKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redislib.Nil) {
			// On redis errors fall back to the backing store without failing.
			_ = c.redis.Del(ctx, tasksCacheKey(userID)).Err()
		}
		return nil, false
	}
	var tasks []domain.Task
	if err := sonic.Unmarshal(data, &tasks); err != nil {
		_ = c.redis.Del(ctx, tasksCacheKey(userID)).Err()
		return nil, false
	}
	return tasks, true
}

func (c *TaskCache) store(ctx context.Context, userID string, tasks []domain.Task) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(tasks)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, tasksCacheKey(userID), data, c.ttl).Err()
}

func (c *TaskCache) evict(ctx context.Context, userID string) {
	if c.redis == nil || userID == "" {
		return
	}
	_ = c.redis.Del(ctx, tasksCacheKey(userID)).Err()
}

func cacheable(filter repository.TaskFilter) bool {
	return filter.UserID != "" && filter.Status == "" && filter.Limit == 0 && filter.Offset == 0
}

func tasksCacheKey(userID string) string {
	return "tasks:" + userID
}
